package cli

import (
	"errors"
	"fmt"

	"ecotrack/internal/adapters/chart"
	"ecotrack/internal/core/ledger"
	"ecotrack/internal/platform/logger"
	"ecotrack/internal/platform/store"
	builddomain "ecotrack/internal/services/build/domain"
	buildmod "ecotrack/internal/services/build/module"

	"github.com/spf13/cobra"
)

func newUpdateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Discover projects, record downloads, rebuild everything and save",
		Long: `Run the whole pipeline: search for projects, record release download counts
for every track, rebuild every tracked project, then save the document and
redraw the chart. When a publish backend is configured the saved document is
mirrored to it as well.

Nothing is written unless every step succeeds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd, opts)
		},
	}
}

func runUpdate(cmd *cobra.Command, opts *RootOptions) error {
	ctx := cmd.Context()
	log := logger.Named("update")
	deps := opts.deps()
	out := opts.stdout(cmd)

	l, err := ledger.LoadOrNew(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitFailure, "load document", err)
	}

	disc, err := opts.wire.discovery(deps)
	if err != nil {
		return setupErr("discovery", err)
	}
	rel, err := opts.wire.releases(deps)
	if err != nil {
		return setupErr("releases", err)
	}
	runner, err := opts.wire.runner(deps, buildmod.Options{ScratchDir: opts.BuildDir}, progressPrinter(out))
	if err != nil {
		return setupErr("build", err)
	}

	dres, err := disc.Poll(ctx, l)
	if err != nil {
		return WrapExitError(ExitFailure, "discovery", err)
	}
	_, _ = fmt.Fprintf(out, "discovered %d projects (%d new), %d source files\n", dres.Found, len(dres.New), dres.Sources)

	tracks, err := rel.Poll(ctx, l)
	if err != nil {
		return WrapExitError(ExitFailure, "releases", err)
	}
	for _, tr := range tracks {
		_, _ = fmt.Fprintf(out, "%s: %d releases, %d new samples\n", tr.Track, tr.Releases, tr.Appended)
	}

	report, err := runner.Run(ctx, l, builddomain.Request{Mode: builddomain.FullRefresh()})
	if err != nil {
		return WrapExitError(ExitFailure, "build", err)
	}
	printSummary(out, report)

	if err := l.Save(opts.DBPath); err != nil {
		return WrapExitError(ExitFailure, "save document", err)
	}
	if err := chart.WriteFile(opts.PlotPath, l.Series()); err != nil {
		if !errors.Is(err, chart.ErrNotEnoughPoints) {
			return WrapExitError(ExitFailure, "render chart", err)
		}
		log.Warn().Err(err).Msg("chart skipped")
	}

	if store.FromConfig(opts.cfg).Any() {
		return publish(cmd, opts, l)
	}
	return nil
}

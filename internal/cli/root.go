// Package cli implements the ecotrack command line
package cli

import (
	"context"
	"io"

	"ecotrack/internal/core/version"
	"ecotrack/internal/modkit"
	"ecotrack/internal/platform/config"
	"ecotrack/internal/platform/logger"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	Quiet    bool
	Verbose  bool
	DBPath   string
	PlotPath string
	BuildDir string

	cfg  config.Conf
	wire wiring
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	return newRoot(defaultWiring())
}

func newRoot(w wiring) *cobra.Command {
	cfg := config.New()
	env := cfg.Prefix("ECOTRACK_")
	opts := &RootOptions{cfg: cfg, wire: w}

	cmd := &cobra.Command{
		Use:   "ecotrack",
		Short: "Track the Veryl ecosystem",
		Long: `ecotrack discovers public Veryl projects, records release download counts
and checks every project against the current compiler, walking failing
projects through the compiler's migrations.`,
		Version:       version.Info().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Quiet && opts.Verbose {
				return NewExitError(ExitCommandError, "--quiet and --verbose are mutually exclusive")
			}
			switch {
			case opts.Quiet:
				logger.SetLevel("error")
			case opts.Verbose:
				logger.SetLevel("debug")
			}
			return nil
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.BoolVar(&opts.Quiet, "quiet", false, "no output printed to stdout, errors only in the log")
	pf.BoolVar(&opts.Verbose, "verbose", false, "use verbose output")
	pf.StringVar(&opts.DBPath, "db", env.MayString("DB_PATH", "db/db.json"), "document path")
	pf.StringVar(&opts.PlotPath, "plot", env.MayString("PLOT_PATH", "db/plot.svg"), "chart path")
	pf.StringVar(&opts.BuildDir, "build-dir", env.MayString("BUILD_DIR", "build"), "scratch directory, wiped every run")

	cmd.AddCommand(
		newUpdateCommand(opts),
		newCheckCommand(opts),
		newServeCommand(opts),
		newPublishCommand(opts),
	)
	return cmd
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		logger.Get().Error().Err(err).Msg("ecotrack failed")
	}
	return ExitCode(err)
}

func (o *RootOptions) deps() modkit.Deps {
	return modkit.Deps{Log: *logger.Get(), Cfg: o.cfg}
}

// stdout is where reports go; --quiet discards them
func (o *RootOptions) stdout(cmd *cobra.Command) io.Writer {
	if o.Quiet {
		return io.Discard
	}
	return cmd.OutOrStdout()
}

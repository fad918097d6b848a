package cli

import (
	"fmt"

	"ecotrack/internal/core/ledger"

	"github.com/spf13/cobra"
)

func newPublishCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Mirror the document into Postgres and ClickHouse",
		Long: `Upsert projects, build logs and discovery snapshots into the Postgres
database at ECOTRACK_PUBLISH_PG_URL and append new download samples to the
ClickHouse database at ECOTRACK_PUBLISH_CH_URL. Either may be omitted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := ledger.Load(opts.DBPath)
			if err != nil {
				return WrapExitError(ExitFailure, "load document", err)
			}
			return publish(cmd, opts, l)
		},
	}
}

func publish(cmd *cobra.Command, opts *RootOptions, l *ledger.Ledger) error {
	p, closeStore, err := opts.wire.publisher(cmd.Context(), opts.deps())
	if err != nil {
		return setupErr("publish", err)
	}
	defer closeStore()

	res, err := p.Publish(cmd.Context(), l)
	if err != nil {
		return WrapExitError(ExitFailure, "publish", err)
	}
	_, _ = fmt.Fprintf(opts.stdout(cmd), "published %d projects, %d build logs, %d discoveries, %d download samples\n",
		res.Projects, res.BuildLogs, res.Discoveries, res.Samples)
	return nil
}

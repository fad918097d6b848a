package cli

import (
	statusmod "ecotrack/internal/services/status/module"

	"github.com/spf13/cobra"
)

func newServeCommand(opts *RootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read only status API over the document",
		Long: `Serve the document over HTTP until interrupted:

  GET /healthz
  GET /api/projects[?failing=true]
  GET /api/projects/{id}
  GET /api/downloads/{track}
  GET /api/discovery
  GET /plot.svg

The document is read on every request, so a concurrent update shows up
without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := statusmod.New(opts.deps(), opts.DBPath, statusmod.Options{Addr: addr})
			if err != nil {
				return setupErr("status", err)
			}
			if err := m.Server().Run(cmd.Context()); err != nil {
				return WrapExitError(ExitFailure, "serve", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides ECOTRACK_API_ADDR")
	return cmd
}

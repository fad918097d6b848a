package cli

import (
	"ecotrack/internal/core/ledger"
	builddomain "ecotrack/internal/services/build/domain"
	buildmod "ecotrack/internal/services/build/module"

	"github.com/spf13/cobra"
)

// CheckOptions holds flags for the check command
type CheckOptions struct {
	*RootOptions
	Path      string
	All       bool
	Target    string
	Reference string
}

func newCheckCommand(root *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: root}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Build tracked projects ad hoc without recording anything",
		Long: `Build every tracked project whose revision or compiler changed, skipping
projects whose latest recorded build failed unless --all is given.

With --reference each project is also built under the reference release and
projects that regressed or got fixed between the two are reported.

Example:
  ecotrack check --path ./target/release/veryl
  ecotrack check --target 0.13 --reference 0.12 --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Path, "path", "", "compiler binary to check with")
	f.BoolVar(&opts.All, "all", false, "also check projects whose latest build failed")
	f.StringVar(&opts.Target, "target", "", "compiler release to check against, e.g. 0.13")
	f.StringVar(&opts.Reference, "reference", "", "compiler release to compare with, enables regression reporting")
	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions) error {
	target, err := builddomain.ParsePin(opts.Target)
	if err != nil {
		return WrapExitError(ExitCommandError, "--target", err)
	}
	reference, err := builddomain.ParsePin(opts.Reference)
	if err != nil {
		return WrapExitError(ExitCommandError, "--reference", err)
	}

	l, err := ledger.LoadOrNew(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitFailure, "load document", err)
	}
	out := opts.stdout(cmd)
	runner, err := opts.wire.runner(opts.deps(), buildmod.Options{ScratchDir: opts.BuildDir}, progressPrinter(out))
	if err != nil {
		return setupErr("build", err)
	}

	report, err := runner.Run(cmd.Context(), l, builddomain.Request{
		CompilerPath: opts.Path,
		Mode:         builddomain.SelectiveCheck(target, reference, opts.All),
	})
	if err != nil {
		return WrapExitError(ExitFailure, "check", err)
	}
	printSummary(out, report)
	return nil
}

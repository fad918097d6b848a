// Package toolchain drives the compiler binary: version query, build and migrate
package toolchain

import (
	"context"
	"strings"

	"ecotrack/internal/adapters/proc"
	perr "ecotrack/internal/platform/errors"
	"ecotrack/internal/services/build/domain"

	"github.com/Masterminds/semver/v3"
)

// Compiler runs one compiler binary through a proc.Runner
type Compiler struct {
	run proc.Runner
	bin string
}

var _ domain.Toolchain = (*Compiler)(nil)

// New returns a Compiler for binary
func New(r proc.Runner, binary string) *Compiler {
	return &Compiler{run: r, bin: binary}
}

// Factory adapts New to domain.ToolchainFactory
func Factory(r proc.Runner) domain.ToolchainFactory {
	return func(binary string) domain.Toolchain { return New(r, binary) }
}

func (c *Compiler) args(pin domain.Pin, rest ...string) []string {
	if a := pin.Arg(); a != "" {
		return append([]string{a}, rest...)
	}
	return rest
}

// Version runs `<bin> [+pin] --version`
func (c *Compiler) Version(ctx context.Context, pin domain.Pin) (*semver.Version, error) {
	res, err := c.run.Run(ctx, proc.Cmd{Name: c.bin, Args: c.args(pin, "--version")})
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, perr.Newf(perr.ErrorCodeProcess, "%s --version: exit %d: %s", c.bin, res.ExitCode, res.Output)
	}
	return ParseVersionOutput(res.Output)
}

// Build runs `<bin> [+pin] build [--check]` in root
func (c *Compiler) Build(ctx context.Context, root string, pin domain.Pin, check bool) (domain.Outcome, error) {
	args := c.args(pin, "build")
	if check {
		args = append(args, "--check")
	}
	return c.outcome(ctx, root, args)
}

// Migrate runs `<bin> +pin migrate` in root
func (c *Compiler) Migrate(ctx context.Context, root string, pin domain.Pin) (domain.Outcome, error) {
	return c.outcome(ctx, root, c.args(pin, "migrate"))
}

func (c *Compiler) outcome(ctx context.Context, root string, args []string) (domain.Outcome, error) {
	res, err := c.run.Run(ctx, proc.Cmd{Name: c.bin, Args: args, Dir: root})
	if err != nil {
		return domain.Outcome{Output: res.Output}, err
	}
	return domain.Outcome{OK: res.OK(), Output: res.Output}, nil
}

// ParseVersionOutput finds the first semantic version in output such as
// "veryl 0.13.1" or "veryl v0.13.1 (abcdef)"
func ParseVersionOutput(out string) (*semver.Version, error) {
	for f := range strings.FieldsSeq(out) {
		if v, err := semver.StrictNewVersion(strings.TrimPrefix(f, "v")); err == nil {
			return v, nil
		}
	}
	return nil, perr.Contractf("no version in compiler output %q", strings.TrimSpace(out))
}

package domain

import (
	"context"

	"ecotrack/internal/core/ledger"

	"github.com/Masterminds/semver/v3"
)

// Outcome is a compiler invocation that ran to completion
type Outcome struct {
	OK     bool
	Output string
}

// Toolchain drives one compiler binary
type Toolchain interface {
	// Version reports the compiler version the pin resolves to
	Version(ctx context.Context, pin Pin) (*semver.Version, error)
	// Build builds the project rooted at root; check also verifies generated output
	Build(ctx context.Context, root string, pin Pin, check bool) (Outcome, error)
	// Migrate rewrites the sources at root to the syntax of the pinned release
	Migrate(ctx context.Context, root string, pin Pin) (Outcome, error)
}

// ToolchainFactory opens a Toolchain for a compiler binary path
type ToolchainFactory func(binary string) Toolchain

// Checkout fetches project sources
type Checkout interface {
	Clone(ctx context.Context, url, dir string) error
	Head(ctx context.Context, dir string) (string, error)
}

// RunnerPort runs the build pipeline over a ledger
type RunnerPort interface {
	Run(ctx context.Context, l *ledger.Ledger, req Request) (Report, error)
}

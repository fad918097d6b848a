// Package module wires the build orchestrator to git and the compiler
package module

import (
	"ecotrack/internal/adapters/proc"
	"ecotrack/internal/adapters/toolchain"
	"ecotrack/internal/adapters/vcs/git"
	"ecotrack/internal/modkit"
	"ecotrack/internal/platform/backoff"
	"ecotrack/internal/services/build/domain"
	"ecotrack/internal/services/build/service"
)

// Module defines the build module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

var _ modkit.Module = (*Module)(nil)

// New constructs the build module. Non-zero overrides win over env
func New(deps modkit.Deps, overrides Options, progress func(domain.ProjectReport)) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	if overrides.ScratchDir != "" {
		opts.ScratchDir = overrides.ScratchDir
	}
	if overrides.Compiler != "" {
		opts.Compiler = overrides.Compiler
	}
	if overrides.StepTimeout != 0 {
		opts.StepTimeout = overrides.StepTimeout
	}
	if overrides.MaxMigrateSteps != 0 {
		opts.MaxMigrateSteps = overrides.MaxMigrateSteps
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	runner := proc.Exec{Timeout: opts.StepTimeout}
	co := git.New(runner, git.Options{
		Binary: opts.GitBinary,
		Retry:  backoff.Policy{Base: opts.RetryBase, MaxAttempts: opts.MaxAttempts},
	})
	svc := service.New(deps, service.Config{
		ScratchDir:      opts.ScratchDir,
		Manifest:        opts.Manifest,
		CompilerPath:    opts.Compiler,
		MaxMigrateSteps: opts.MaxMigrateSteps,
		Progress:        progress,
	}, co, toolchain.Factory(runner))

	return &Module{deps: deps, opts: opts, ports: Ports{Runner: svc}}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "build" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Runner returns the typed orchestrator port
func (m *Module) Runner() domain.RunnerPort { return m.ports.Runner }

// Options returns the effective options
func (m *Module) Options() Options { return m.opts }

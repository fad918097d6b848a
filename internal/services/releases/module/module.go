// Package module wires the release poller to the GitHub releases API
package module

import (
	"ecotrack/internal/adapters/github"
	"ecotrack/internal/core/ledger"
	"ecotrack/internal/modkit"
	"ecotrack/internal/services/releases/domain"
	"ecotrack/internal/services/releases/service"
)

// Module defines the releases module
type Module struct {
	opts   Options
	poller domain.PollerPort
}

var _ modkit.Module = (*Module)(nil)

// New constructs the module. A nil lister means the GitHub API
func New(deps modkit.Deps, list domain.Lister) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if list == nil {
		list = github.NewClient(github.FromConfig(deps.Cfg))
	}
	svc := service.New(deps, service.Config{
		Repos: map[ledger.Track]string{
			ledger.TrackCompiler:  opts.CompilerRepo,
			ledger.TrackInstaller: opts.InstallerRepo,
		},
		SkipUnknownAssets: opts.SkipUnknownAssets,
	}, list)
	return &Module{opts: opts, poller: svc}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "releases" }

// Ports returns the poller
func (m *Module) Ports() any { return m.poller }

// Poller returns the typed poller port
func (m *Module) Poller() domain.PollerPort { return m.poller }

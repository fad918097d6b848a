// Package module wires the discovery poller to GitHub code search
package module

import (
	"ecotrack/internal/adapters/github"
	"ecotrack/internal/modkit"
	"ecotrack/internal/services/discovery/domain"
	"ecotrack/internal/services/discovery/service"
)

// Module defines the discovery module
type Module struct {
	poller domain.PollerPort
}

var _ modkit.Module = (*Module)(nil)

// New constructs the module. A nil searcher means the GitHub API
func New(deps modkit.Deps, search domain.Searcher) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	if search == nil {
		if err := opts.Validate(); err != nil {
			return nil, err
		}
		gh := github.FromConfig(deps.Cfg)
		gh.Token = opts.Token
		search = github.NewClient(gh)
	}
	seeds, err := service.LoadSeeds(opts.SeedsFile)
	if err != nil {
		return nil, err
	}
	svc := service.New(deps, service.Config{
		SourceQuery:  opts.SourceQuery,
		ProjectQuery: opts.ProjectQuery,
		Seeds:        seeds,
	}, search)
	return &Module{poller: svc}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "discovery" }

// Ports returns the poller
func (m *Module) Ports() any { return m.poller }

// Poller returns the typed poller port
func (m *Module) Poller() domain.PollerPort { return m.poller }

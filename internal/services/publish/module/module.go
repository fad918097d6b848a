// Package module wires the publisher to whichever stores deps carries
package module

import (
	"ecotrack/internal/modkit"
	"ecotrack/internal/modkit/repokit"
	perr "ecotrack/internal/platform/errors"
	"ecotrack/internal/services/publish/domain"
	"ecotrack/internal/services/publish/repo"
	"ecotrack/internal/services/publish/service"
)

// Module defines the publish module
type Module struct {
	publisher domain.PublisherPort
}

var _ modkit.Module = (*Module)(nil)

// New constructs the module. At least one of deps.PG and deps.CH must be set
func New(deps modkit.Deps) (*Module, error) {
	if deps.PG == nil && deps.CH == nil {
		return nil, perr.New(perr.ErrorCodeInvalidArgument, "publish needs ECOTRACK_PUBLISH_PG_URL or ECOTRACK_PUBLISH_CH_URL")
	}
	opts := FromConfig(deps.Cfg)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if deps.PG != nil && opts.StatementTimeout > 0 {
		deps.PG = repokit.WithBeginHooks(deps.PG, repokit.StatementTimeout(opts.StatementTimeout))
	}
	var samples repo.SampleStore
	if deps.CH != nil {
		samples = repo.NewCH(deps.CH)
	}
	return &Module{publisher: service.New(deps, repo.NewPG(), samples)}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "publish" }

// Ports returns the publisher
func (m *Module) Ports() any { return m.publisher }

// Publisher returns the typed publisher port
func (m *Module) Publisher() domain.PublisherPort { return m.publisher }

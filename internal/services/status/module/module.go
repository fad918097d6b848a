// Package module wires the status API onto an http server
package module

import (
	"ecotrack/internal/modkit"
	phttp "ecotrack/internal/platform/net/http"
	"ecotrack/internal/platform/net/middleware"
	"ecotrack/internal/services/status/domain"
	statushttp "ecotrack/internal/services/status/http"
	"ecotrack/internal/services/status/service"

	"github.com/go-chi/chi/v5"
)

// Module defines the status module
type Module struct {
	query  domain.QueryPort
	server *phttp.Server
}

var _ modkit.Module = (*Module)(nil)

// New builds the server for the document at dbPath. overrides.Addr wins over
// the environment when set
func New(deps modkit.Deps, dbPath string, overrides Options) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	if overrides.Addr != "" {
		opts.Addr = overrides.Addr
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	q := service.New(dbPath)
	srv := phttp.NewServer(opts.Addr, func(m *chi.Mux) {
		m.Use(middleware.Defaults(opts.SlowRequest)...)
		if len(opts.CORSOrigins) > 0 {
			m.Use(middleware.CORS(middleware.CORSOptions{AllowedOrigins: opts.CORSOrigins, MaxAge: 300}))
		}
	})
	statushttp.Register(srv.Router(), q)
	return &Module{query: q, server: srv}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "status" }

// Ports returns the query port
func (m *Module) Ports() any { return m.query }

// Server returns the configured http server
func (m *Module) Server() *phttp.Server { return m.server }

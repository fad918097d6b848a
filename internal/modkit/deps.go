// Package modkit carries the shared dependencies every module is built from
package modkit

import (
	"ecotrack/internal/modkit/repokit"
	"ecotrack/internal/platform/config"
	"ecotrack/internal/platform/logger"
	"ecotrack/internal/platform/store"
)

// Deps holds core dependencies passed to modules. PG and CH are nil unless a
// publish backend is configured
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// WithStore returns a copy of d using the backends opened in s
func (d Deps) WithStore(s *store.Store) Deps {
	if s != nil {
		d.PG, d.CH = s.PG, s.CH
	}
	return d
}

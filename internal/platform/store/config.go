package store

import "ecotrack/internal/platform/config"

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string
}

// FromConfig reads ECOTRACK_PUBLISH_* keys. A backend is enabled when its URL
// is set
func FromConfig(cfg config.Conf) Config {
	c := cfg.Prefix("ECOTRACK_PUBLISH_")
	pgURL := c.MayString("PG_URL", "")
	chURL := c.MayString("CH_URL", "")
	return Config{
		AppName: "ecotrack",
		PG: PGConfig{
			Enabled:     pgURL != "",
			URL:         pgURL,
			MaxConns:    int32(c.MayInt("PG_MAX_CONNS", 4)),
			LogSQL:      c.MayBool("PG_LOG_SQL", false),
			SlowQueryMs: c.MayInt("PG_SLOW_MS", 250),
		},
		CH: CHConfig{Enabled: chURL != "", URL: chURL},
	}
}

// Any reports whether at least one backend is configured
func (c Config) Any() bool { return c.PG.Enabled || c.CH.Enabled }

package module

import (
	"time"

	"ecotrack/internal/platform/config"
	"ecotrack/internal/platform/validate"
)

// Options controls the publisher
type Options struct {
	StatementTimeout time.Duration `conf:"ECOTRACK_PUBLISH_STATEMENT_TIMEOUT" validate:"gte=0"`
}

// FromConfig reads options using the ECOTRACK_PUBLISH_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("ECOTRACK_PUBLISH_")
	return Options{
		StatementTimeout: c.MayDuration("STATEMENT_TIMEOUT", 30*time.Second),
	}
}

// Validate reports the first invalid option
func (o Options) Validate() error { return validate.Struct(o) }

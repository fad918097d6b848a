package module

import (
	"time"

	"ecotrack/internal/platform/config"
	"ecotrack/internal/platform/validate"
)

// Options controls the status server
type Options struct {
	Addr        string        `conf:"ECOTRACK_API_ADDR" validate:"required,hostname_port"`
	CORSOrigins []string      `conf:"ECOTRACK_API_CORS_ORIGINS" validate:"dive,required"`
	SlowRequest time.Duration `conf:"ECOTRACK_API_SLOW" validate:"gte=0"`
}

// FromConfig reads options using the ECOTRACK_API_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("ECOTRACK_API_")
	return Options{
		Addr:        c.MayString("ADDR", "127.0.0.1:4000"),
		CORSOrigins: c.MayCSV("CORS_ORIGINS", nil),
		SlowRequest: c.MayDuration("SLOW", 500*time.Millisecond),
	}
}

// Validate reports the first invalid option
func (o Options) Validate() error { return validate.Struct(o) }

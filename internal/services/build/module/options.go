package module

import (
	"time"

	"ecotrack/internal/platform/config"
	"ecotrack/internal/platform/validate"
)

// Options controls the build orchestrator. Values are read from ECOTRACK_ env
type Options struct {
	ScratchDir      string        `conf:"ECOTRACK_BUILD_DIR" validate:"required"`
	Compiler        string        `conf:"ECOTRACK_COMPILER" validate:"required"`
	Manifest        string        `conf:"ECOTRACK_MANIFEST" validate:"required"`
	StepTimeout     time.Duration `conf:"ECOTRACK_STEP_TIMEOUT" validate:"gte=0"`
	MaxMigrateSteps int           `conf:"ECOTRACK_MIGRATE_MAX_STEPS" validate:"gte=1,lte=1024"`
	GitBinary       string        `conf:"ECOTRACK_GIT" validate:"required"`

	// clone retry
	RetryBase   time.Duration `conf:"ECOTRACK_RETRY_BASE" validate:"gte=0"`
	MaxAttempts int           `conf:"ECOTRACK_RETRY_MAX" validate:"gte=1"`
}

// FromConfig reads options using the ECOTRACK_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("ECOTRACK_")
	return Options{
		ScratchDir:      c.MayString("BUILD_DIR", "build"),
		Compiler:        c.MayString("COMPILER", "veryl"),
		Manifest:        c.MayString("MANIFEST", "Veryl.toml"),
		StepTimeout:     c.MayDuration("STEP_TIMEOUT", 10*time.Minute),
		MaxMigrateSteps: c.MayInt("MIGRATE_MAX_STEPS", 64),
		GitBinary:       c.MayString("GIT", "git"),
		RetryBase:       c.MayDuration("RETRY_BASE", 500*time.Millisecond),
		MaxAttempts:     c.MayInt("RETRY_MAX", 5),
	}
}

// Validate reports the first invalid option
func (o Options) Validate() error { return validate.Struct(o) }

package module

import (
	"ecotrack/internal/platform/config"
	"ecotrack/internal/platform/validate"
)

// Options controls the release poller
type Options struct {
	CompilerRepo      string `conf:"ECOTRACK_COMPILER_REPO" validate:"required,ghrepo"`
	InstallerRepo     string `conf:"ECOTRACK_INSTALLER_REPO" validate:"omitempty,ghrepo"`
	SkipUnknownAssets bool   `conf:"ECOTRACK_SKIP_UNKNOWN_ASSETS"`
}

// FromConfig reads options using the ECOTRACK_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("ECOTRACK_")
	return Options{
		CompilerRepo:      c.MayString("COMPILER_REPO", "veryl-lang/veryl"),
		InstallerRepo:     c.MayString("INSTALLER_REPO", "veryl-lang/verylup"),
		SkipUnknownAssets: c.MayBool("SKIP_UNKNOWN_ASSETS", false),
	}
}

// Validate reports the first invalid option
func (o Options) Validate() error { return validate.Struct(o) }

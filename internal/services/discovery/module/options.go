package module

import (
	"ecotrack/internal/platform/config"
	"ecotrack/internal/platform/validate"
)

// Options controls the discovery poller
type Options struct {
	SourceQuery  string `conf:"ECOTRACK_SOURCE_QUERY" validate:"required"`
	ProjectQuery string `conf:"ECOTRACK_PROJECT_QUERY" validate:"required"`
	SeedsFile    string `conf:"ECOTRACK_SEEDS_FILE"`
	Token        string `conf:"ECOTRACK_GITHUB_TOKEN" validate:"required"`
}

// FromConfig reads options using the ECOTRACK_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("ECOTRACK_")
	return Options{
		SourceQuery:  c.MayString("SOURCE_QUERY", "extension:veryl"),
		ProjectQuery: c.MayString("PROJECT_QUERY", "filename:Veryl.toml"),
		SeedsFile:    c.MayString("SEEDS_FILE", ""),
		Token:        c.MayString("GITHUB_TOKEN", ""),
	}
}

// Validate reports the first invalid option
func (o Options) Validate() error { return validate.Struct(o) }

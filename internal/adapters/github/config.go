package github

import (
	"time"

	"ecotrack/internal/platform/backoff"
	"ecotrack/internal/platform/config"
)

// FromConfig reads client options using the ECOTRACK_GITHUB_ and
// ECOTRACK_RETRY_ keys
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("ECOTRACK_")
	return Options{
		BaseURL: c.MayString("GITHUB_API", baseURLDefault),
		Token:   c.MayString("GITHUB_TOKEN", ""),
		RPS:     c.MayFloat64("GITHUB_RPS", defaultRPS),
		Burst:   c.MayInt("GITHUB_BURST", defaultBurst),
		Timeout: c.MayDuration("GITHUB_TIMEOUT", defaultTimeout),
		Retry: backoff.Policy{
			Base:        c.MayDuration("RETRY_BASE", 500*time.Millisecond),
			MaxAttempts: c.MayInt("RETRY_MAX", 5),
		},
	}
}

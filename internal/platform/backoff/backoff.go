// Package backoff runs flaky remote calls under a bounded exponential retry policy
package backoff

import (
	"context"
	"time"

	"ecotrack/internal/platform/logger"

	cb "github.com/cenkalti/backoff/v4"
)

const (
	defaultBase     = 500 * time.Millisecond
	defaultCeiling  = 30 * time.Second
	defaultAttempts = 5
)

// Policy is a fixed base delay doubled per attempt, capped at Ceiling, for at
// most MaxAttempts calls in total
type Policy struct {
	Base        time.Duration
	Ceiling     time.Duration
	MaxAttempts int
}

// WithDefaults fills zero fields
func (p Policy) WithDefaults() Policy {
	if p.Base <= 0 {
		p.Base = defaultBase
	}
	if p.Ceiling <= 0 {
		p.Ceiling = defaultCeiling
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultAttempts
	}
	return p
}

// Delay returns the wait before retry n (0 based)
func (p Policy) Delay(n int) time.Duration {
	p = p.WithDefaults()
	if n < 0 {
		n = 0
	}
	d := p.Base
	for i := 0; i < n; i++ {
		d *= 2
		if d >= p.Ceiling {
			return p.Ceiling
		}
	}
	return min(d, p.Ceiling)
}

// Retries reports whether another call is allowed after `done` calls
func (p Policy) Retries(done int) bool { return done < p.WithDefaults().MaxAttempts }

func (p Policy) schedule(ctx context.Context) cb.BackOffContext {
	p = p.WithDefaults()
	eb := cb.NewExponentialBackOff()
	eb.InitialInterval = p.Base
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxInterval = p.Ceiling
	eb.MaxElapsedTime = 0
	eb.Reset()
	return cb.WithContext(cb.WithMaxRetries(eb, uint64(p.MaxAttempts-1)), ctx)
}

// Permanent marks err as not worth another attempt; Do returns the inner error
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return cb.Permanent(err)
}

// Do calls fn until it succeeds, returns a Permanent error, the context ends,
// or the attempt ceiling is reached. The last error is returned as is
func Do(ctx context.Context, p Policy, op string, fn func(context.Context) error) error {
	log := logger.C(ctx)
	attempt := 0
	return cb.RetryNotify(func() error {
		attempt++
		return fn(ctx)
	}, p.schedule(ctx), func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Dur("retry_in", wait).Msg("retrying")
	})
}

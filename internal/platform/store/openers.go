package store

import (
	"context"
	"time"

	"ecotrack/internal/core/version"
	"ecotrack/internal/platform/backoff"
	perr "ecotrack/internal/platform/errors"
	chx "ecotrack/internal/platform/store/ch"
	"ecotrack/internal/platform/store/pg"
)

// pingPolicy bounds how long Open waits for a database that is still starting
var pingPolicy = backoff.Policy{Base: 150 * time.Millisecond, Ceiling: 2 * time.Second, MaxAttempts: 10}

const pingTimeout = 3 * time.Second

// openPG opens the pool and returns the adapter once a ping succeeds
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}
	p, err := pg.Open(ctx, pg.Config{URL: cfg.PG.URL, MaxConns: cfg.PG.MaxConns, SlowMs: cfg.PG.SlowQueryMs}, tracer)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "postgres config")
	}
	err = backoff.Do(ctx, pingPolicy, "postgres ping", func(ctx context.Context) error {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return p.Pool.Ping(toCtx)
	})
	if err != nil {
		p.Close()
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "postgres unreachable")
	}
	return newPGAdapter(p), nil
}

func openCH(ctx context.Context, cfg Config) (Clickhouse, error) {
	var c *chx.CH
	err := backoff.Do(ctx, pingPolicy, "clickhouse connect", func(ctx context.Context) error {
		var err error
		c, err = chx.Open(ctx, chx.Config{URL: cfg.CH.URL, Role: "publish", Tag: version.Info().Version})
		return err
	})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "clickhouse unreachable")
	}
	return newCHAdapter(c), nil
}

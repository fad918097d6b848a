package repo

import (
	"context"
	"time"

	perr "ecotrack/internal/platform/errors"
	"ecotrack/internal/platform/store"
	"ecotrack/internal/services/publish/domain"
)

const chSchema = `
CREATE TABLE IF NOT EXISTS download_samples (
	track     LowCardinality(String),
	version   String,
	platform  LowCardinality(String),
	ts        DateTime('UTC'),
	downloads UInt64
) ENGINE = ReplacingMergeTree
ORDER BY (track, version, platform, ts)`

var sampleCols = []string{"track", "version", "platform", "ts", "downloads"}

// SampleStore is the columnar side of a publish
type SampleStore interface {
	EnsureSchema(ctx context.Context) error
	LatestDates(ctx context.Context) (map[string]time.Time, error)
	InsertSamples(ctx context.Context, xs []domain.SampleRow) error
}

type chSamples struct{ ch store.Clickhouse }

// NewCH returns the ClickHouse sample store
func NewCH(c store.Clickhouse) SampleStore { return &chSamples{ch: c} }

// EnsureSchema implements SampleStore
func (s *chSamples) EnsureSchema(ctx context.Context) error {
	if err := s.ch.Exec(ctx, chSchema); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "ensure download_samples")
	}
	return nil
}

// LatestDates implements SampleStore, keyed by track
func (s *chSamples) LatestDates(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.ch.Query(ctx, `SELECT track, max(ts) FROM download_samples GROUP BY track`)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "latest download sample")
	}
	defer rows.Close()

	out := map[string]time.Time{}
	for rows.Next() {
		var track string
		var ts time.Time
		if err := rows.Scan(&track, &ts); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "scan latest download sample")
		}
		out[track] = ts.UTC()
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "latest download sample")
	}
	return out, nil
}

// InsertSamples implements SampleStore
func (s *chSamples) InsertSamples(ctx context.Context, xs []domain.SampleRow) error {
	rows := make([][]any, len(xs))
	for i, x := range xs {
		rows[i] = []any{x.Track, x.Version, x.Platform, x.Date.UTC(), x.Downloads}
	}
	if err := s.ch.Insert(ctx, "download_samples", sampleCols, rows); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "insert download samples")
	}
	return nil
}

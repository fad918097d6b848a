// Package service mirrors the ledger into Postgres and ClickHouse
package service

import (
	"context"
	"maps"
	"slices"
	"time"

	"ecotrack/internal/core/ledger"
	"ecotrack/internal/modkit"
	"ecotrack/internal/modkit/repokit"
	"ecotrack/internal/platform/backoff"
	perr "ecotrack/internal/platform/errors"
	"ecotrack/internal/platform/logger"
	"ecotrack/internal/services/publish/domain"
	"ecotrack/internal/services/publish/repo"
)

// Service implements domain.PublisherPort. Either backend may be absent
type Service struct {
	log     logger.Logger
	pg      repokit.TxRunner
	binder  repokit.Binder[repo.Storage]
	samples repo.SampleStore
	retry   backoff.Policy
}

// DefaultRetry bounds how often a contended Postgres transaction is replayed
var DefaultRetry = backoff.Policy{Base: 200 * time.Millisecond, Ceiling: 5 * time.Second, MaxAttempts: 3}

var _ domain.PublisherPort = (*Service)(nil)

// New constructs the publisher over deps.PG and the given sample store
func New(deps modkit.Deps, b repokit.Binder[repo.Storage], samples repo.SampleStore) *Service {
	return &Service{
		log:     deps.Log.With().Str("component", "publish").Logger(),
		pg:      deps.PG,
		binder:  b,
		samples: samples,
		retry:   DefaultRetry,
	}
}

// WithRetry replaces the transaction retry policy
func (s *Service) WithRetry(p backoff.Policy) *Service {
	s.retry = p
	return s
}

// Publish writes every project, build log and discovery in one transaction,
// replayed while Postgres reports contention, then appends the download samples newer than what ClickHouse already holds
func (s *Service) Publish(ctx context.Context, l *ledger.Ledger) (domain.Result, error) {
	var res domain.Result
	if s.pg == nil && s.samples == nil {
		return res, perr.New(perr.ErrorCodeInvalidArgument, "no publish backend configured")
	}

	if s.pg != nil {
		projects, logs := projectRows(l)
		discoveries := discoveryRows(l)
		err := backoff.Do(ctx, s.retry, "publish postgres", func(ctx context.Context) error {
			err := repokit.WithTx(ctx, s.pg, func(q repokit.Queryer) error {
				st := repokit.MustBind(s.binder, q)
				if err := st.EnsureSchema(ctx); err != nil {
					return err
				}
				if err := st.UpsertProjects(ctx, projects); err != nil {
					return err
				}
				if err := st.UpsertBuildLogs(ctx, logs); err != nil {
					return err
				}
				return st.UpsertDiscoveries(ctx, discoveries)
			})
			if err != nil && !perr.Retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		})
		if err != nil {
			return res, err
		}
		res.Projects, res.BuildLogs, res.Discoveries = len(projects), len(logs), len(discoveries)
	}

	if s.samples != nil {
		n, err := s.publishSamples(ctx, l)
		if err != nil {
			return res, err
		}
		res.Samples = n
	}

	s.log.Info().
		Int("projects", res.Projects).
		Int("build_logs", res.BuildLogs).
		Int("discoveries", res.Discoveries).
		Int("samples", res.Samples).
		Msg("published")
	return res, nil
}

func (s *Service) publishSamples(ctx context.Context, l *ledger.Ledger) (int, error) {
	if err := s.samples.EnsureSchema(ctx); err != nil {
		return 0, err
	}
	latest, err := s.samples.LatestDates(ctx)
	if err != nil {
		return 0, err
	}
	rows := sampleRows(l, latest)
	if len(rows) == 0 {
		return 0, nil
	}
	if err := s.samples.InsertSamples(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func projectRows(l *ledger.Ledger) ([]domain.ProjectRow, []domain.BuildLogRow) {
	var projects []domain.ProjectRow
	var logs []domain.BuildLogRow
	for _, p := range l.Projects() {
		projects = append(projects, domain.ProjectRow{ID: int64(p.ID), URL: p.URL})
		for seq, b := range p.BuildLogs {
			logs = append(logs, domain.BuildLogRow{
				ProjectID:       int64(p.ID),
				Seq:             seq,
				Rev:             b.Rev,
				CompilerVersion: b.CompilerVersion,
				Result:          b.Result,
			})
		}
	}
	return projects, logs
}

// discoveryRows keeps the last snapshot per second since date is the key
func discoveryRows(l *ledger.Ledger) []domain.DiscoveryRow {
	byDate := map[int64]domain.DiscoveryRow{}
	for _, d := range l.Discoveries() {
		ids := make([]int64, len(d.Projects))
		for i, id := range d.Projects {
			ids[i] = int64(id)
		}
		byDate[d.Date.Unix()] = domain.DiscoveryRow{Date: d.Date.Time(), Sources: int64(d.Sources), ProjectIDs: ids}
	}
	out := make([]domain.DiscoveryRow, 0, len(byDate))
	for _, k := range slices.Sorted(maps.Keys(byDate)) {
		out = append(out, byDate[k])
	}
	return out
}

// sampleRows flattens samples strictly newer than latest[track], in a stable
// order
func sampleRows(l *ledger.Ledger, latest map[string]time.Time) []domain.SampleRow {
	var out []domain.SampleRow
	for _, tr := range ledger.Tracks {
		after, seen := latest[string(tr)]
		byVersion := l.Downloads(tr)
		for _, v := range slices.Sorted(maps.Keys(byVersion)) {
			for _, smp := range byVersion[v] {
				at := smp.Date.Time()
				if seen && !at.After(after) {
					continue
				}
				for _, p := range slices.Sorted(maps.Keys(smp.Counts)) {
					out = append(out, domain.SampleRow{
						Track:     string(tr),
						Version:   v,
						Platform:  string(p),
						Date:      at,
						Downloads: smp.Counts[p],
					})
				}
			}
		}
	}
	return out
}

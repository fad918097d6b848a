// Package service answers status queries from the persisted document
package service

import (
	"context"
	"errors"
	"io"

	"ecotrack/internal/adapters/chart"
	"ecotrack/internal/core/ledger"
	"ecotrack/internal/core/version"
	perr "ecotrack/internal/platform/errors"
	"ecotrack/internal/services/status/domain"
)

// Service implements domain.QueryPort. The document is read on every call so
// the API follows whatever the last update saved
type Service struct {
	path string
	load func(path string) (*ledger.Ledger, error)
}

var _ domain.QueryPort = (*Service)(nil)

// New serves the document at path. A missing document reads as empty
func New(path string) *Service {
	return &Service{path: path, load: ledger.LoadOrNew}
}

func (s *Service) ledger(ctx context.Context) (*ledger.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.load(s.path)
}

// Health implements domain.QueryPort
func (s *Service) Health(ctx context.Context) (domain.Health, error) {
	l, err := s.ledger(ctx)
	if err != nil {
		return domain.Health{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "document unreadable")
	}
	return domain.Health{
		Status:      "ok",
		Version:     version.Info().Version,
		Projects:    l.Len(),
		Discoveries: len(l.Discoveries()),
	}, nil
}

// Projects implements domain.QueryPort
func (s *Service) Projects(ctx context.Context, f domain.ProjectFilter) ([]domain.ProjectSummary, error) {
	l, err := s.ledger(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ProjectSummary, 0, l.Len())
	for _, p := range l.Projects() {
		sum := domain.ProjectSummary{ID: p.ID, URL: p.URL, Builds: len(p.BuildLogs)}
		if b, ok := p.Latest(); ok {
			sum.Latest = &b
		}
		if f.Failing && (sum.Latest == nil || sum.Latest.Result) {
			continue
		}
		out = append(out, sum)
	}
	return out, nil
}

// Project implements domain.QueryPort
func (s *Service) Project(ctx context.Context, id uint64) (domain.ProjectDetail, error) {
	l, err := s.ledger(ctx)
	if err != nil {
		return domain.ProjectDetail{}, err
	}
	p, ok := l.Project(id)
	if !ok {
		return domain.ProjectDetail{}, perr.NotFoundf("project %d", id)
	}
	logs := p.BuildLogs
	if logs == nil {
		logs = []ledger.BuildLog{}
	}
	return domain.ProjectDetail{ID: p.ID, URL: p.URL, BuildLogs: logs}, nil
}

// Downloads implements domain.QueryPort
func (s *Service) Downloads(ctx context.Context, track ledger.Track) (domain.Downloads, error) {
	if !track.Valid() {
		return domain.Downloads{}, perr.InvalidArgf("unknown track %q", track)
	}
	l, err := s.ledger(ctx)
	if err != nil {
		return domain.Downloads{}, err
	}
	hist := l.Downloads(track)
	out := domain.Downloads{Track: track, Versions: []domain.VersionDownloads{}}
	for _, v := range l.Versions(track) {
		out.Versions = append(out.Versions, domain.VersionDownloads{Version: v, Samples: hist[v]})
	}
	return out, nil
}

// Discovery implements domain.QueryPort
func (s *Service) Discovery(ctx context.Context) ([]domain.DiscoveryPoint, error) {
	l, err := s.ledger(ctx)
	if err != nil {
		return nil, err
	}
	series := l.Series()
	out := make([]domain.DiscoveryPoint, len(series))
	for i, p := range series {
		out[i] = domain.DiscoveryPoint{Date: p.Date, Sources: p.Sources, Projects: p.Projects}
	}
	return out, nil
}

// Plot renders the discovery chart to w
func (s *Service) Plot(ctx context.Context, w io.Writer) error {
	l, err := s.ledger(ctx)
	if err != nil {
		return err
	}
	if err := chart.Render(w, l.Series()); err != nil {
		if errors.Is(err, chart.ErrNotEnoughPoints) {
			return perr.Wrap(err, perr.ErrorCodeNotFound, "no chart yet")
		}
		return perr.Wrap(err, perr.ErrorCodeUnknown, "render chart")
	}
	return nil
}

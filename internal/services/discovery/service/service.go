// Package service polls code search for projects using the language and
// records a discovery snapshot
package service

import (
	"context"
	"slices"
	"time"

	"ecotrack/internal/core/canon"
	"ecotrack/internal/core/ledger"
	"ecotrack/internal/modkit"
	perr "ecotrack/internal/platform/errors"
	"ecotrack/internal/platform/logger"
	"ecotrack/internal/services/discovery/domain"
)

// Config holds the search queries and seeds
type Config struct {
	// SourceQuery counts source files of the language
	SourceQuery string
	// ProjectQuery finds repositories holding a project manifest
	ProjectQuery string
	Seeds        domain.Seeds
}

// Service implements domain.PollerPort
type Service struct {
	cfg     Config
	log     logger.Logger
	search  domain.Searcher
	exclude map[string]bool
	now     func() time.Time
}

var _ domain.PollerPort = (*Service)(nil)

// New constructs the poller
func New(deps modkit.Deps, cfg Config, s domain.Searcher) *Service {
	ex := make(map[string]bool, len(cfg.Seeds.Exclude))
	for _, u := range cfg.Seeds.Exclude {
		ex[canon.Key(u)] = true
	}
	return &Service{
		cfg:     cfg,
		log:     deps.Log.With().Str("component", "discovery").Logger(),
		search:  s,
		exclude: ex,
		now:     time.Now,
	}
}

// Poll queries both searches, registers every found repository and appends
// one snapshot. Nothing is recorded when a search fails
func (s *Service) Poll(ctx context.Context, l *ledger.Ledger) (domain.Result, error) {
	sources, err := s.search.SearchCount(ctx, s.cfg.SourceQuery)
	if err != nil {
		return domain.Result{}, perr.Wrapf(err, perr.CodeOf(err), "search %q", s.cfg.SourceQuery)
	}
	found, err := s.search.SearchRepos(ctx, s.cfg.ProjectQuery)
	if err != nil {
		return domain.Result{}, perr.Wrapf(err, perr.CodeOf(err), "search %q", s.cfg.ProjectQuery)
	}

	res := domain.Result{At: s.now().UTC().Truncate(time.Second), Sources: sources}
	seen := map[string]bool{}
	for _, u := range slices.Concat(found.Repos, s.cfg.Seeds.Extra) {
		key := canon.Key(u)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if s.exclude[key] {
			res.Excluded++
			continue
		}
		id, created := l.InsertProject(u)
		if created {
			res.New = append(res.New, id)
			s.log.Info().Uint64("project_id", id).Str("url", canon.URL(u)).Msg("new project")
		}
		res.Projects = append(res.Projects, id)
	}
	res.Found = len(res.Projects)

	l.RecordDiscovery(ledger.Discovery{Date: ledger.At(res.At), Sources: sources, Projects: res.Projects})

	ev := s.log.Info()
	if found.Truncated {
		ev = s.log.Warn().Bool("truncated", true)
	}
	ev.Uint64("sources", sources).
		Int("projects", res.Found).
		Int("new", len(res.New)).
		Int("excluded", res.Excluded).
		Msg("discovery recorded")
	return res, nil
}

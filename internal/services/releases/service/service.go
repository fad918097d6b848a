// Package service samples release download counts per distribution track
package service

import (
	"context"
	"time"

	"ecotrack/internal/core/ledger"
	"ecotrack/internal/modkit"
	perr "ecotrack/internal/platform/errors"
	"ecotrack/internal/platform/logger"
	"ecotrack/internal/services/releases/domain"
)

// Config maps each track to its owner/name repository
type Config struct {
	Repos             map[ledger.Track]string
	SkipUnknownAssets bool
}

// Service implements domain.PollerPort
type Service struct {
	cfg  Config
	log  logger.Logger
	list domain.Lister
	now  func() time.Time
}

var _ domain.PollerPort = (*Service)(nil)

// New constructs the poller
func New(deps modkit.Deps, cfg Config, list domain.Lister) *Service {
	return &Service{
		cfg:  cfg,
		log:  deps.Log.With().Str("component", "releases").Logger(),
		list: list,
		now:  time.Now,
	}
}

func (s *Service) opts() ledger.RecordOptions {
	return ledger.RecordOptions{SkipUnknownAssets: s.cfg.SkipUnknownAssets}
}

// Poll lists and validates every configured track first and only then
// records, so a remote failure or a malformed release on any track leaves the
// ledger untouched. All tracks share one date
func (s *Service) Poll(ctx context.Context, l *ledger.Ledger) ([]domain.TrackResult, error) {
	at := s.now()
	fetched := make(map[ledger.Track][]ledger.Release, len(s.cfg.Repos))
	for _, tr := range ledger.Tracks {
		repo, ok := s.cfg.Repos[tr]
		if !ok || repo == "" {
			continue
		}
		rels, err := s.list.ListReleases(ctx, repo)
		if err != nil {
			return nil, perr.Wrapf(err, perr.CodeOf(err), "list %s releases of %s", tr, repo)
		}
		if err := ledger.CheckReleases(rels, s.opts()); err != nil {
			return nil, perr.Wrapf(err, perr.CodeOf(err), "%s releases of %s", tr, repo)
		}
		fetched[tr] = rels
	}

	var out []domain.TrackResult
	for _, tr := range ledger.Tracks {
		rels, ok := fetched[tr]
		if !ok {
			continue
		}
		rr, err := l.RecordReleaseDownloads(rels, tr, at, s.opts())
		if err != nil {
			return out, err
		}
		for _, name := range rr.Skipped {
			s.log.Warn().Str("track", string(tr)).Str("asset", name).Msg("unknown release asset skipped")
		}
		s.log.Info().
			Str("track", string(tr)).
			Str("repo", s.cfg.Repos[tr]).
			Int("releases", len(rels)).
			Int("appended", rr.Appended).
			Int("unchanged", rr.Unchanged).
			Msg("downloads recorded")
		out = append(out, domain.TrackResult{Track: tr, Repo: s.cfg.Repos[tr], Releases: len(rels), RecordResult: rr})
	}
	return out, nil
}

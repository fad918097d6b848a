package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"ecotrack/internal/core/canon"
	"ecotrack/internal/core/ledger"
	"ecotrack/internal/platform/logger"
	"ecotrack/internal/services/build/domain"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
)

// projectRun carries one project through the pipeline steps
type projectRun struct {
	tc      domain.Toolchain
	ver     *semver.Version
	mode    domain.Mode
	project ledger.Project
	dir     string
	log     zerolog.Logger

	report domain.ProjectReport
	record *ledger.BuildLog
}

// step is one stage of the per-project pipeline; returning true ends it
type step func(ctx context.Context, r *projectRun) bool

func (s *Service) steps() []step {
	return []step{s.skipKnownFailure, s.fetch, s.skipUnchanged, s.build}
}

// runProject runs the steps and always removes the checkout afterwards
func (s *Service) runProject(ctx context.Context, tc domain.Toolchain, ver *semver.Version, p ledger.Project, mode domain.Mode) (domain.ProjectReport, *ledger.Entry) {
	ctx = logger.WithProject(ctx, p.URL)
	r := &projectRun{
		tc:      tc,
		ver:     ver,
		mode:    mode,
		project: p,
		dir:     filepath.Join(s.cfg.ScratchDir, filepath.FromSlash(canon.PathOf(p.URL))),
		log:     s.log.With().Uint64("project_id", p.ID).Str("url", p.URL).Logger(),
		report:  domain.ProjectReport{ID: p.ID, URL: p.URL},
	}
	defer func() {
		if err := os.RemoveAll(r.dir); err != nil {
			r.log.Warn().Err(err).Str("dir", r.dir).Msg("checkout cleanup failed")
		}
	}()

	start := s.now()
	for _, st := range s.steps() {
		if st(ctx, r) {
			break
		}
	}
	r.report.Elapsed = s.now().Sub(start)

	ev := r.log.Info()
	if r.report.Status == domain.StatusFail || r.report.Status == domain.StatusCheckoutFailed {
		ev = r.log.Warn()
	}
	ev.Str("status", string(r.report.Status)).
		Str("rev", r.report.Rev).
		Strs("failing_roots", r.report.FailingRoots).
		Strs("migrated_roots", r.report.MigratedRoots).
		Dur("elapsed", r.report.Elapsed).
		Msg("project done")

	if r.record == nil {
		return r.report, nil
	}
	return r.report, &ledger.Entry{ProjectID: p.ID, Log: *r.record}
}

func (r *projectRun) finish(status domain.Status, result bool, detail string) {
	r.report.Status = status
	r.report.Detail = detail
	if status.Recorded() {
		r.record = &ledger.BuildLog{Rev: r.report.Rev, CompilerVersion: r.ver.String(), Result: result}
	}
}

// skipKnownFailure drops projects whose last verdict failed, in check mode only
func (s *Service) skipKnownFailure(_ context.Context, r *projectRun) bool {
	if !r.mode.Selective || r.mode.IncludeKnownFailures {
		return false
	}
	if latest, ok := r.project.Latest(); ok && !latest.Result {
		r.finish(domain.StatusSkipped, false, "last build failed")
		return true
	}
	return false
}

// fetch clones the project and reads its head revision
func (s *Service) fetch(ctx context.Context, r *projectRun) bool {
	if err := s.checkout.Clone(ctx, r.project.URL, r.dir); err != nil {
		r.finish(domain.StatusCheckoutFailed, false, err.Error())
		return true
	}
	rev, err := s.checkout.Head(ctx, r.dir)
	if err != nil {
		r.finish(domain.StatusCheckoutFailed, false, err.Error())
		return true
	}
	r.report.Rev = rev
	return false
}

// skipUnchanged ends the pipeline when neither the sources nor the compiler moved
func (s *Service) skipUnchanged(_ context.Context, r *projectRun) bool {
	latest, ok := r.project.Latest()
	if ok && latest.Rev == r.report.Rev && latest.CompilerVersion == r.ver.String() {
		r.finish(domain.StatusUnchanged, latest.Result, "already built at this revision")
		return true
	}
	return false
}

// build builds every manifest root; the project passes only if all roots do
func (s *Service) build(ctx context.Context, r *projectRun) bool {
	roots, err := findRoots(r.dir, s.cfg.Manifest)
	if err != nil {
		r.finish(domain.StatusFail, false, err.Error())
		return true
	}
	if len(roots) == 0 {
		r.finish(domain.StatusFail, false, "no "+s.cfg.Manifest+" found")
		return true
	}

	prober := Prober{MaxSteps: s.cfg.MaxMigrateSteps}
	var notes []string
	for _, rel := range roots {
		abs := filepath.Join(r.dir, filepath.FromSlash(rel))
		log := r.log.With().Str("root", rel).Logger()

		out, err := r.tc.Build(ctx, abs, r.mode.Target, r.mode.Compare())
		ok := err == nil && out.OK
		if err != nil {
			notes = append(notes, rel+": "+err.Error())
		}

		if r.mode.Compare() {
			ref, rerr := r.tc.Build(ctx, abs, r.mode.Reference, true)
			refOK := rerr == nil && ref.OK
			switch {
			case refOK && !ok:
				r.report.Regressions = append(r.report.Regressions, rel)
			case !refOK && ok:
				r.report.Fixed = append(r.report.Fixed, rel)
			}
		}
		if ok {
			continue
		}

		log.Debug().Str("output", out.Output).Msg("build failed, probing migrations")
		res := prober.Run(ctx, r.tc, abs, r.ver, r.mode.Target, r.mode.Compare())
		if res.OK {
			log.Info().Uint64("anchor", res.Anchor).Int("steps", len(res.Steps)).Msg("root migrated")
			r.report.MigratedRoots = append(r.report.MigratedRoots, rel)
			continue
		}
		log.Debug().Str("reason", res.Reason).Msg("migration did not help")
		r.report.FailingRoots = append(r.report.FailingRoots, rel)
	}

	detail := strings.Join(notes, "; ")
	switch {
	case len(r.report.FailingRoots) > 0:
		failing := "failing: " + strings.Join(r.report.FailingRoots, ", ")
		if detail != "" {
			failing += "; " + detail
		}
		r.finish(domain.StatusFail, false, failing)
	case len(r.report.MigratedRoots) > 0:
		r.finish(domain.StatusMigrated, true, detail)
	default:
		r.finish(domain.StatusPass, true, detail)
	}
	return true
}

// Package service implements the build orchestrator: every tracked project is
// cloned, checked for changes, built per manifest root and, on failure, walked
// through the compiler's migrations before its verdict is recorded
package service

import (
	"context"
	"os"
	"time"

	"ecotrack/internal/core/ledger"
	"ecotrack/internal/modkit"
	perr "ecotrack/internal/platform/errors"
	"ecotrack/internal/platform/logger"
	"ecotrack/internal/services/build/domain"

	"github.com/google/uuid"
)

// Config tunes the orchestrator
type Config struct {
	ScratchDir      string
	Manifest        string
	CompilerPath    string
	MaxMigrateSteps int

	// Progress is called after each project, in order
	Progress func(domain.ProjectReport)
}

// Service runs builds over a ledger
type Service struct {
	cfg        Config
	log        logger.Logger
	checkout   domain.Checkout
	toolchains domain.ToolchainFactory

	now      func() time.Time
	newRunID func() string
}

var _ domain.RunnerPort = (*Service)(nil)

// New constructs the orchestrator
func New(deps modkit.Deps, cfg Config, co domain.Checkout, tf domain.ToolchainFactory) *Service {
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = "build"
	}
	if cfg.Manifest == "" {
		cfg.Manifest = "Veryl.toml"
	}
	if cfg.CompilerPath == "" {
		cfg.CompilerPath = "veryl"
	}
	if cfg.MaxMigrateSteps <= 0 {
		cfg.MaxMigrateSteps = 64
	}
	return &Service{
		cfg:        cfg,
		log:        deps.Log.With().Str("component", "build").Logger(),
		checkout:   co,
		toolchains: tf,
		now:        time.Now,
		newRunID:   newRunID,
	}
}

func newRunID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// Run processes every project in ascending id order. Build logs are appended
// to l only once the loop has finished, so a canceled run records nothing
func (s *Service) Run(ctx context.Context, l *ledger.Ledger, req domain.Request) (domain.Report, error) {
	runID := s.newRunID()
	ctx = logger.WithRun(ctx, runID)
	log := s.log.With().Str("run_id", runID).Str("mode", req.Mode.String()).Logger()

	bin := req.CompilerPath
	if bin == "" {
		bin = s.cfg.CompilerPath
	}
	tc := s.toolchains(bin)
	ver, err := tc.Version(ctx, req.Mode.Target)
	if err != nil {
		return domain.Report{}, perr.Wrapf(err, perr.CodeOf(err), "query %s version", bin)
	}
	if err := s.resetScratch(); err != nil {
		return domain.Report{}, err
	}

	report := domain.Report{RunID: runID, Mode: req.Mode.String(), CompilerVersion: ver.String()}
	log.Info().Str("compiler", bin).Str("version", ver.String()).Int("projects", l.Len()).Msg("build run started")

	var pending []ledger.Entry
	started := s.now()
	for _, p := range l.Projects() {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Int("pending", len(pending)).Msg("build run canceled, nothing recorded")
			return report, err
		}
		pr, entry := s.runProject(ctx, tc, ver, p, req.Mode)
		report.Projects = append(report.Projects, pr)
		if entry != nil {
			pending = append(pending, *entry)
		}
		if s.cfg.Progress != nil {
			s.cfg.Progress(pr)
		}
	}

	if err := l.AppendBuildLogs(pending); err != nil {
		return report, err
	}
	report.Committed = len(pending)

	log.Info().
		Int("pass", report.Count(domain.StatusPass)).
		Int("migrated", report.Count(domain.StatusMigrated)).
		Int("fail", report.Count(domain.StatusFail)).
		Int("checkout_failed", report.Count(domain.StatusCheckoutFailed)).
		Int("unchanged", report.Count(domain.StatusUnchanged)).
		Int("skipped", report.Count(domain.StatusSkipped)).
		Int("committed", report.Committed).
		Dur("elapsed", s.now().Sub(started)).
		Msg("build run finished")
	return report, nil
}

// resetScratch deletes and recreates the scratch directory
func (s *Service) resetScratch() error {
	if err := os.RemoveAll(s.cfg.ScratchDir); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "clear scratch dir %s", s.cfg.ScratchDir)
	}
	if err := os.MkdirAll(s.cfg.ScratchDir, 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "create scratch dir %s", s.cfg.ScratchDir)
	}
	return nil
}

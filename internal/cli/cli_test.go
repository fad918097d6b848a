package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ecotrack/internal/core/ledger"
	"ecotrack/internal/modkit"
	perr "ecotrack/internal/platform/errors"
	builddomain "ecotrack/internal/services/build/domain"
	buildmod "ecotrack/internal/services/build/module"
	discdomain "ecotrack/internal/services/discovery/domain"
	pubdomain "ecotrack/internal/services/publish/domain"
	reldomain "ecotrack/internal/services/releases/domain"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDiscovery struct{ calls int }

func (f *fakeDiscovery) Poll(_ context.Context, l *ledger.Ledger) (discdomain.Result, error) {
	f.calls++
	id, created := l.InsertProject("https://github.com/acme/alu")
	var fresh []uint64
	if created {
		fresh = append(fresh, id)
	}
	at := time.Unix(1700000000, 0).Add(time.Duration(f.calls) * time.Hour)
	l.RecordDiscovery(ledger.Discovery{Date: ledger.At(at), Sources: uint64(10 * f.calls), Projects: []uint64{id}})
	return discdomain.Result{Sources: uint64(10 * f.calls), Found: 1, New: fresh}, nil
}

type fakeReleases struct{}

func (fakeReleases) Poll(context.Context, *ledger.Ledger) ([]reldomain.TrackResult, error) {
	return []reldomain.TrackResult{{Track: ledger.TrackCompiler, Releases: 2}}, nil
}

type fakeRunner struct {
	reqs     []builddomain.Request
	progress func(builddomain.ProjectReport)
	err      error
}

func (f *fakeRunner) Run(_ context.Context, l *ledger.Ledger, req builddomain.Request) (builddomain.Report, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return builddomain.Report{}, f.err
	}
	pr := builddomain.ProjectReport{ID: 0, URL: "https://github.com/acme/alu", Status: builddomain.StatusPass}
	f.progress(pr)
	if !req.Mode.Selective {
		if err := l.AppendBuildLogs([]ledger.Entry{{ProjectID: 0, Log: ledger.BuildLog{Rev: "a1", CompilerVersion: "0.5.0", Result: true}}}); err != nil {
			return builddomain.Report{}, err
		}
	}
	return builddomain.Report{CompilerVersion: "0.5.0", Projects: []builddomain.ProjectReport{pr}, Committed: 1}, nil
}

type fakePublisher struct{ published int }

func (f *fakePublisher) Publish(_ context.Context, l *ledger.Ledger) (pubdomain.Result, error) {
	f.published++
	return pubdomain.Result{Projects: l.Len()}, nil
}

type harness struct {
	disc   *fakeDiscovery
	runner *fakeRunner
	pub    *fakePublisher
	dir    string
	out    bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{disc: &fakeDiscovery{}, runner: &fakeRunner{}, pub: &fakePublisher{}, dir: t.TempDir()}
}

func (h *harness) root() *cobra.Command {
	w := wiring{
		discovery: func(modkit.Deps) (discdomain.PollerPort, error) { return h.disc, nil },
		releases:  func(modkit.Deps) (reldomain.PollerPort, error) { return fakeReleases{}, nil },
		runner: func(_ modkit.Deps, _ buildmod.Options, progress func(builddomain.ProjectReport)) (builddomain.RunnerPort, error) {
			h.runner.progress = progress
			return h.runner, nil
		},
		publisher: func(context.Context, modkit.Deps) (pubdomain.PublisherPort, func(), error) {
			return h.pub, func() {}, nil
		},
	}
	cmd := newRoot(w)
	cmd.SetOut(&h.out)
	cmd.SetErr(&h.out)
	return cmd
}

func (h *harness) run(args ...string) error {
	cmd := h.root()
	base := []string{
		"--db", filepath.Join(h.dir, "db", "db.json"),
		"--plot", filepath.Join(h.dir, "db", "plot.svg"),
		"--build-dir", filepath.Join(h.dir, "build"),
	}
	cmd.SetArgs(append(args, base...))
	return cmd.ExecuteContext(context.Background())
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"update", "check", "serve", "publish"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	for _, flag := range []string{"quiet", "verbose", "db", "plot", "build-dir"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
	check, _, _ := cmd.Find([]string{"check"})
	for _, flag := range []string{"path", "all", "target", "reference"} {
		assert.NotNil(t, check.Flags().Lookup(flag), flag)
	}
}

func TestUpdate_SavesAndDrawsChart(t *testing.T) {
	t.Setenv("ECOTRACK_PUBLISH_PG_URL", "")
	t.Setenv("ECOTRACK_PUBLISH_CH_URL", "")
	h := newHarness(t)

	require.NoError(t, h.run("update"))
	assert.Contains(t, h.out.String(), "pass            https://github.com/acme/alu")
	assert.Contains(t, h.out.String(), "recorded  1")

	l, err := ledger.Load(filepath.Join(h.dir, "db", "db.json"))
	require.NoError(t, err)
	assert.Equal(t, 1, l.Len())
	_, err = os.Stat(filepath.Join(h.dir, "db", "plot.svg"))
	assert.True(t, os.IsNotExist(err), "one point is not a chart")

	require.NoError(t, h.run("update"))
	_, err = os.Stat(filepath.Join(h.dir, "db", "plot.svg"))
	assert.NoError(t, err)
	assert.Zero(t, h.pub.published)
	assert.False(t, h.runner.reqs[0].Mode.Selective)
}

func TestUpdate_PublishesWhenConfigured(t *testing.T) {
	t.Setenv("ECOTRACK_PUBLISH_PG_URL", "postgres://localhost/ecotrack")
	h := newHarness(t)
	require.NoError(t, h.run("update"))
	assert.Equal(t, 1, h.pub.published)
	assert.Contains(t, h.out.String(), "published 1 projects")
}

func TestUpdate_FailedBuildSavesNothing(t *testing.T) {
	h := newHarness(t)
	h.runner.err = perr.Newf(perr.ErrorCodeIO, "scratch")
	err := h.run("update")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	_, statErr := os.Stat(filepath.Join(h.dir, "db", "db.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCheck_ModeAndNoSave(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("check", "--path", "/opt/veryl", "--all", "--target", "+0.13", "--reference", "0.12", "--quiet"))
	require.Len(t, h.runner.reqs, 1)
	req := h.runner.reqs[0]
	assert.Equal(t, "/opt/veryl", req.CompilerPath)
	assert.Equal(t, builddomain.SelectiveCheck("0.13", "0.12", true), req.Mode)
	assert.Empty(t, h.out.String())

	_, err := os.Stat(filepath.Join(h.dir, "db", "db.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestCheck_BadPinIsCommandError(t *testing.T) {
	h := newHarness(t)
	err := h.run("check", "--target", "latest")
	assert.Equal(t, ExitCommandError, ExitCode(err))
	assert.Empty(t, h.runner.reqs)
}

func TestQuietAndVerboseConflict(t *testing.T) {
	h := newHarness(t)
	err := h.run("check", "--quiet", "--verbose")
	assert.Equal(t, ExitCommandError, ExitCode(err))
}

func TestPublish_NeedsDocument(t *testing.T) {
	h := newHarness(t)
	err := h.run("publish")
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.True(t, perr.IsCode(err, perr.ErrorCodeIO))
	assert.Zero(t, h.pub.published)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitCommandError, ExitCode(perr.InvalidArgf("x")))
	assert.Equal(t, ExitFailure, ExitCode(perr.Decodef("x")))
	assert.Equal(t, ExitCommandError, ExitCode(setupErr("build", perr.New(perr.ErrorCodeValidation, "x"))))
	assert.Equal(t, 7, ExitCode(WrapExitError(7, "x", perr.InvalidArgf("y"))))
}

func TestVersionFlag(t *testing.T) {
	h := newHarness(t)
	cmd := h.root()
	cmd.SetArgs([]string{"--version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, h.out.String(), "ecotrack dev")
}

package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"ecotrack/internal/modkit"
	"ecotrack/internal/services/build/domain"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
)

// fakeToolchain records every invocation as "<verb> <root> <pin>"
type fakeToolchain struct {
	mu      sync.Mutex
	version string
	calls   []string

	build    func(root string, pin domain.Pin, check bool) bool
	buildErr func(root string) error
	migrate  func(root string, pin domain.Pin) bool
}

func (f *fakeToolchain) Version(_ context.Context, pin domain.Pin) (*semver.Version, error) {
	f.record("version", "", pin)
	return semver.StrictNewVersion(f.version)
}

func (f *fakeToolchain) Build(_ context.Context, root string, pin domain.Pin, check bool) (domain.Outcome, error) {
	f.record("build", root, pin)
	if f.buildErr != nil {
		if err := f.buildErr(root); err != nil {
			return domain.Outcome{}, err
		}
	}
	ok := true
	if f.build != nil {
		ok = f.build(root, pin, check)
	}
	return domain.Outcome{OK: ok, Output: "build output"}, nil
}

func (f *fakeToolchain) Migrate(_ context.Context, root string, pin domain.Pin) (domain.Outcome, error) {
	f.record("migrate", root, pin)
	ok := false
	if f.migrate != nil {
		ok = f.migrate(root, pin)
	}
	return domain.Outcome{OK: ok}, nil
}

func (f *fakeToolchain) record(verb, root string, pin domain.Pin) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, strings.TrimSpace(verb+" "+filepath.Base(root)+" "+string(pin)))
}

func (f *fakeToolchain) count(verb string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, verb+" ") || c == verb {
			n++
		}
	}
	return n
}

type fakeRepo struct {
	rev      string
	files    map[string]string
	cloneErr error
}

// fakeCheckout materializes repos from memory
type fakeCheckout struct {
	repos  map[string]fakeRepo
	clones []string
	revs   map[string]string
}

func (f *fakeCheckout) Clone(_ context.Context, url, dir string) error {
	f.clones = append(f.clones, url)
	r, ok := f.repos[url]
	if !ok {
		return errors.New("repository not found")
	}
	if r.cloneErr != nil {
		return r.cloneErr
	}
	for rel, body := range r.files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			return err
		}
	}
	if f.revs == nil {
		f.revs = map[string]string{}
	}
	f.revs[dir] = r.rev
	return nil
}

func (f *fakeCheckout) Head(_ context.Context, dir string) (string, error) {
	rev, ok := f.revs[dir]
	if !ok {
		return "", errors.New("not a git repository")
	}
	return rev, nil
}

func newTestService(t *testing.T, co domain.Checkout, tc *fakeToolchain) *Service {
	t.Helper()
	svc := New(modkit.Deps{Log: zerolog.Nop()}, Config{
		ScratchDir: filepath.Join(t.TempDir(), "build"),
		Manifest:   "Veryl.toml",
	}, co, func(string) domain.Toolchain { return tc })
	svc.newRunID = func() string { return "run-test" }
	return svc
}

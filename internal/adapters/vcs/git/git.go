// Package git wraps the git binary for the two things a build needs: a
// shallow clone and the revision it checked out
package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"ecotrack/internal/adapters/proc"
	"ecotrack/internal/platform/backoff"
	perr "ecotrack/internal/platform/errors"
)

// Options configures the Client
type Options struct {
	Binary string
	Retry  backoff.Policy
}

// Client runs git through a proc.Runner
type Client struct {
	run   proc.Runner
	bin   string
	retry backoff.Policy
}

// New returns a Client, git from PATH unless Binary is set
func New(r proc.Runner, o Options) *Client {
	if o.Binary == "" {
		o.Binary = "git"
	}
	return &Client{run: r, bin: o.Binary, retry: o.Retry.WithDefaults()}
}

// Clone replaces dir with a depth one checkout of url. Network flakes are
// retried, a missing repository is not
func (c *Client) Clone(ctx context.Context, url, dir string) error {
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "create %s", filepath.Dir(dir))
	}
	return backoff.Do(ctx, c.retry, "git clone", func(ctx context.Context) error {
		if err := os.RemoveAll(dir); err != nil {
			return backoff.Permanent(perr.Wrapf(err, perr.ErrorCodeIO, "clear %s", dir))
		}
		res, err := c.run.Run(ctx, proc.Cmd{
			Name: c.bin,
			Args: []string{"clone", "--depth", "1", "--quiet", "--", url, dir},
			Env:  []string{"GIT_TERMINAL_PROMPT=0"},
		})
		if err != nil {
			// a step timeout is worth another attempt, a missing binary is not
			if perr.IsCode(err, perr.ErrorCodeProcess) && !errors.Is(err, context.DeadlineExceeded) {
				return backoff.Permanent(err)
			}
			return err
		}
		if res.OK() {
			return nil
		}
		cerr := perr.Newf(perr.ErrorCodeUnavailable, "git clone %s: exit %d: %s", url, res.ExitCode, res.Output)
		if gone(res.Output) {
			return backoff.Permanent(perr.WithOp(perr.Newf(perr.ErrorCodeNotFound, "git clone %s: %s", url, res.Output), "clone"))
		}
		return cerr
	})
}

// Head returns the full commit id checked out in dir
func (c *Client) Head(ctx context.Context, dir string) (string, error) {
	res, err := c.run.Run(ctx, proc.Cmd{Name: c.bin, Args: []string{"-C", dir, "rev-parse", "HEAD"}})
	if err != nil {
		return "", err
	}
	if !res.OK() {
		return "", perr.Newf(perr.ErrorCodeUnknown, "git rev-parse in %s: exit %d: %s", dir, res.ExitCode, res.Output)
	}
	rev := strings.TrimSpace(res.Output)
	if rev == "" {
		return "", perr.Newf(perr.ErrorCodeUnknown, "git rev-parse in %s: empty output", dir)
	}
	return rev, nil
}

// gone reports output that no amount of retrying will fix
func gone(out string) bool {
	o := strings.ToLower(out)
	return strings.Contains(o, "repository not found") ||
		strings.Contains(o, "does not exist") ||
		strings.Contains(o, "could not read username")
}

// Package proc runs external tools (git, the compiler) with a timeout and a
// bounded capture of their output
package proc

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"time"

	perr "ecotrack/internal/platform/errors"
)

const (
	defaultMaxOutput = 8 << 10
	// grandchildren holding the output pipe open get this long after a kill
	waitDelay = 2 * time.Second
)

// Cmd describes one invocation
type Cmd struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

// String renders the command line for logs
func (c Cmd) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is a process that ran to completion
type Result struct {
	ExitCode int
	Output   string
	Elapsed  time.Duration
}

// OK reports a zero exit status
func (r Result) OK() bool { return r.ExitCode == 0 }

// Runner runs commands. A non-zero exit is a Result; an error means the
// process could not start or did not finish
type Runner interface {
	Run(ctx context.Context, c Cmd) (Result, error)
}

// Exec is the os/exec backed Runner
type Exec struct {
	// Timeout bounds each invocation, zero means no limit
	Timeout time.Duration
	// MaxOutput is how many trailing bytes of combined output are kept
	MaxOutput int
}

// Run implements Runner
func (e Exec) Run(ctx context.Context, c Cmd) (Result, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}
	max := e.MaxOutput
	if max <= 0 {
		max = defaultMaxOutput
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = waitDelay
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}
	out := &tail{max: max}
	cmd.Stdout = out
	cmd.Stderr = out

	start := time.Now()
	err := cmd.Run()
	res := Result{Output: out.String(), Elapsed: time.Since(start)}
	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return res, perr.Wrapf(ctxErr, perr.ErrorCodeProcess, "%s: timed out after %s", c.Name, e.Timeout)
		}
		return res, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, perr.Wrapf(err, perr.ErrorCodeProcess, "%s: could not run", c.Name)
}

// tail keeps the last max bytes written to it
type tail struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (t *tail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.buf))
}

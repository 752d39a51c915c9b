package toolchain

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Runner executes toolchain commands in a working directory and captures the
// combined output for step records and failure reports.
type Runner struct {
	env []string
}

// Option configures a Runner.
type Option func(*Runner)

// WithEnv appends KEY=VALUE entries to the inherited environment.
func WithEnv(env ...string) Option {
	return func(r *Runner) {
		r.env = append(r.env, env...)
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes argv in dir and returns the combined stdout and stderr. On
// failure the trailing output is attached to the error so failure reports can
// show what the tool printed.
func (r *Runner) Run(ctx context.Context, dir string, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", goerr.New("empty command")
	}

	ctxlog.From(ctx).Debug("running command", "dir", dir, "argv", argv)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), r.env...)

	out, err := cmd.CombinedOutput()
	output := strings.TrimRight(string(out), "\n")
	if err != nil {
		return output, goerr.Wrap(err, "command failed",
			goerr.V("argv", argv),
			goerr.V("output", tail(output, 4096)),
		)
	}

	return output, nil
}

// tail returns at most n trailing bytes of s, cut on a line boundary when one
// is available.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}

	s = s[len(s)-n:]
	if i := strings.IndexByte(s, '\n'); i >= 0 && i+1 < len(s) {
		return s[i+1:]
	}
	return s
}

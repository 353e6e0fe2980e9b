package harness

import (
	"context"
	"log/slog"
	"time"

	"tectest/logging"
)

// Options configures a Harness.
type Options struct {
	// Timeout per process invocation. Zero means no limit.
	Timeout time.Duration
	// Env is appended to the parent environment of every child.
	Env []string
	// KeepWorkspaces leaves every workspace on disk.
	KeepWorkspaces bool
	// KeepFailed leaves the workspaces of failing cases on disk.
	KeepFailed bool
	Logger     *slog.Logger
}

// Harness stages, runs and judges cases against one resolved binary.
// It is safe for concurrent use: every Execute gets its own workspace
// and child process.
type Harness struct {
	exe    Executable
	stager *Stager
	opts   Options
	runner *Runner
}

// New returns a Harness for exe reading fixtures through stager.
func New(exe Executable, stager *Stager, opts Options) *Harness {
	if opts.Logger == nil {
		opts.Logger = logging.Logger
	}
	return &Harness{
		exe:    exe,
		stager: stager,
		opts:   opts,
		runner: NewRunner(exe, RunnerOptions{Timeout: opts.Timeout, Env: opts.Env, Logger: opts.Logger}),
	}
}

// WithLogger returns a copy of h that logs to logger.
func (h *Harness) WithLogger(logger *slog.Logger) *Harness {
	opts := h.opts
	opts.Logger = logger
	return New(h.exe, h.stager, opts)
}

// Executable returns the binary under test.
func (h *Harness) Executable() Executable {
	return h.exe
}

// Stager returns the fixture stager.
func (h *Harness) Stager() *Stager {
	return h.stager
}

// Runner returns the process runner.
func (h *Harness) Runner() *Runner {
	return h.runner
}

// Execute stages c's fixtures, runs the binary with c's arguments and
// judges the result against c's mode. The Skip mode is not consulted:
// callers decide what to execute.
func (h *Harness) Execute(ctx context.Context, c Case) Outcome {
	start := time.Now()
	logger := h.opts.Logger.With("case", c.Name)
	outcome := Outcome{Case: c.Name, Mode: c.Mode}

	ws, err := h.stager.Stage(c.Fixtures)
	if err != nil {
		outcome.Status, outcome.Err = judge(c.Mode, err)
		outcome.Duration = time.Since(start)
		logger.Error("staging failed", "error", err)
		return outcome
	}
	outcome.Workspace = ws.Dir
	logger.Debug("workspace staged", "dir", ws.Dir, "files", len(ws.Files))

	result, err := h.runner.Run(ctx, ws.Dir, c.Args...)
	if err == nil {
		err = Verdict(result)
	}
	outcome.Result = result
	outcome.Status, outcome.Err = judge(c.Mode, err)
	outcome.Duration = time.Since(start)

	if outcome.Status == StatusPassed && result != nil {
		logger.Info("command succeeded",
			"status", result.Status.String(),
			"stdout", string(result.Stdout),
			"stderr", string(result.Stderr))
	} else if !outcome.Status.OK() {
		logger.Error("case failed", "status", outcome.Status, "error", outcome.Err)
	}

	if h.opts.KeepWorkspaces || (h.opts.KeepFailed && !outcome.Status.OK()) {
		logger.Info("workspace kept for inspection", "dir", ws.Dir)
		return outcome
	}
	if err := ws.Remove(); err != nil {
		logger.Warn("failed to remove workspace", "dir", ws.Dir, "error", err)
		return outcome
	}
	outcome.Workspace = ""
	return outcome
}

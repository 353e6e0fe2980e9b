package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"tectest/logging"
)

// waitDelay bounds how long Wait blocks on inherited pipes after a
// timed-out child has been killed.
const waitDelay = 5 * time.Second

// ExitStatus is how a child process terminated.
type ExitStatus struct {
	Exited bool   // terminated normally, Code is meaningful
	Code   int    // -1 when the process did not exit normally
	Signal string // set when terminated by a signal
}

// Success reports a normal exit with code zero.
func (s ExitStatus) Success() bool {
	return s.Exited && s.Code == 0
}

func (s ExitStatus) String() string {
	switch {
	case s.Exited:
		return fmt.Sprintf("exit status: %d", s.Code)
	case s.Signal != "":
		return "signal: " + s.Signal
	default:
		return "abnormal termination"
	}
}

// ProcessResult is the captured result of one invocation.
type ProcessResult struct {
	Binary   string
	Args     []string
	Dir      string
	Status   ExitStatus
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// CommandLine renders the invocation so it can be pasted into a shell.
func (r *ProcessResult) CommandLine() string {
	return formatCommand(append([]string{r.Binary}, r.Args...))
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// Timeout kills the child after this long. Zero means wait forever.
	Timeout time.Duration
	// Env holds extra KEY=VALUE pairs appended to the parent environment.
	Env []string
	// Logger receives the invocation record. Defaults to logging.Logger.
	Logger *slog.Logger
}

// Runner executes the binary under test.
type Runner struct {
	exe     Executable
	timeout time.Duration
	env     []string
	logger  *slog.Logger
}

// NewRunner returns a Runner for exe.
func NewRunner(exe Executable, opts RunnerOptions) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Logger
	}
	return &Runner{
		exe:     exe,
		timeout: opts.Timeout,
		env:     opts.Env,
		logger:  logger,
	}
}

// Run starts the binary in dir with args, buffers both output streams
// and blocks until it exits. A non-zero exit is not an error here; see
// Verdict. Errors are *SpawnError when the process never started,
// *TimeoutError when the configured deadline killed it and
// *InterruptedError when the caller's context did.
func (r *Runner) Run(parent context.Context, dir string, args ...string) (*ProcessResult, error) {
	ctx := parent
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.exe.Path, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), r.env...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Info("running binary",
		"binary", r.exe.Path,
		"cwd", dir,
		"args", args,
		"command", formatCommand(cmd.Args))

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: cmd.Args, Dir: dir, Err: err}
	}
	waitErr := cmd.Wait()

	result := &ProcessResult{
		Binary:   r.exe.Path,
		Args:     append([]string(nil), args...),
		Dir:      dir,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		result.Status = exitStatus(cmd.ProcessState)
	}

	r.logger.Debug("binary finished",
		"command", result.CommandLine(),
		"status", result.Status.String(),
		"duration", result.Duration)

	// A child that exited on its own just before a cancellation keeps its status.
	if ctx.Err() != nil && !result.Status.Exited {
		if err := parent.Err(); err != nil {
			return result, &InterruptedError{Err: err, Result: result}
		}
		return result, &TimeoutError{Timeout: r.timeout, Result: result}
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return result, fmt.Errorf("failed to wait for %s: %w", result.CommandLine(), waitErr)
	}

	return result, nil
}

// formatCommand quotes arguments containing whitespace or quotes.
func formatCommand(argv []string) string {
	parts := make([]string, len(argv))
	for i, arg := range argv {
		if arg == "" || strings.ContainsAny(arg, " \t\n\"'\\") {
			parts[i] = strconv.Quote(arg)
		} else {
			parts[i] = arg
		}
	}
	return strings.Join(parts, " ")
}

package testenv

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"tectest/config"
	"tectest/harness"
	"tectest/paths"
)

// TestEnvironment runs cases for one test.
type TestEnvironment struct {
	Harness *harness.Harness
	tb      testing.TB
}

// NewTestEnvironment builds a harness for tb from the process environment.
// LocateBinary must have succeeded.
func NewTestEnvironment(tb testing.TB) *TestEnvironment {
	tb.Helper()

	exe, err := LocateBinary()
	if err != nil {
		tb.Fatalf("binary under test unavailable: %v", err)
	}

	fixtures, err := paths.FixturesRoot()
	if err != nil {
		tb.Fatalf("Failed to resolve fixtures root: %v", err)
	}

	timeout, err := config.TimeoutFromEnv()
	if err != nil {
		tb.Fatalf("%v", err)
	}

	h := harness.New(exe, harness.NewStager(fixtures), harness.Options{
		Timeout:    timeout,
		KeepFailed: KeepWorkspace(),
		Logger:     Logger(tb),
	})
	return &TestEnvironment{Harness: h, tb: tb}
}

// Execute runs c and returns its outcome.
func (e *TestEnvironment) Execute(c harness.Case) harness.Outcome {
	e.tb.Helper()
	return e.Harness.Execute(context.Background(), c)
}

// Run stages fixtures, runs the binary with args in the workspace and
// returns the raw result. The workspace is removed when the test ends,
// unless it failed and KeepWorkspace is set.
func (e *TestEnvironment) Run(fixtures []string, args ...string) *harness.ProcessResult {
	e.tb.Helper()

	ws := Stage(e.tb, e.Harness.Stager(), fixtures...)
	result, err := e.Harness.Runner().Run(context.Background(), ws.Dir, args...)
	if err != nil {
		e.tb.Fatalf("%v", err)
	}
	return result
}

// Stage copies fixtures into a fresh workspace and registers its removal.
func Stage(tb testing.TB, stager *harness.Stager, fixtures ...string) *harness.Workspace {
	tb.Helper()

	ws, err := stager.Stage(fixtures)
	if err != nil {
		tb.Fatalf("%v", err)
	}
	tb.Cleanup(func() {
		if tb.Failed() && KeepWorkspace() {
			tb.Logf("Workspace kept for inspection: %s", ws.Dir)
			return
		}
		if err := ws.Remove(); err != nil {
			tb.Logf("Warning: failed to remove workspace %s: %v", ws.Dir, err)
		}
	})
	return ws
}

// KeepWorkspace reports whether failed workspaces should be kept.
func KeepWorkspace() bool {
	return os.Getenv("TECTONIC_KEEP_WORKSPACE") == "1"
}

// RunIgnored reports whether cases registered as skipped should run.
func RunIgnored() bool {
	return os.Getenv("TECTONIC_RUN_IGNORED") == "1"
}

// Logger returns a logger whose records appear in tb's output.
func Logger(tb testing.TB) *slog.Logger {
	return slog.New(slog.NewTextHandler(tbWriter{tb}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type tbWriter struct {
	tb testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.tb.Logf("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

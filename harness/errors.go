package harness

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind classifies harness failures.
type Kind string

const (
	KindSetup   Kind = "setup"   // fixture staging failed, aborts one case
	KindLocate  Kind = "locate"  // binary under test missing, aborts the run
	KindSpawn   Kind = "spawn"   // process could not be started, aborts one case
	KindOutcome Kind = "outcome" // non-zero exit or abnormal termination
	KindTimeout Kind = "timeout" // opt-in deadline exceeded
	KindCancel  Kind = "cancel"  // caller's context ended while the child ran
)

// KindOf returns the Kind of the first harness error in err's chain,
// or an empty Kind when err carries none.
func KindOf(err error) Kind {
	var k interface{ Kind() Kind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}

// SetupError reports a failure to build a workspace.
type SetupError struct {
	Fixture   string // empty when the workspace itself could not be created
	Workspace string
	Err       error
}

func (e *SetupError) Error() string {
	if e.Fixture == "" {
		return fmt.Sprintf("failed to create workspace: %v", e.Err)
	}
	return fmt.Sprintf("failed to stage fixture %q into %s: %v", e.Fixture, e.Workspace, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }
func (e *SetupError) Kind() Kind    { return KindSetup }

// LocateError reports that the binary under test does not exist where the
// environment says it should. It aborts the whole run: the build
// prerequisite was never satisfied.
type LocateError struct {
	Path   string
	Source Source
	Err    error
}

func (e *LocateError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to resolve binary under test (set %s): %v", BinPathEnv, e.Err)
	}
	return fmt.Sprintf("binary not found at %q (%s). Do you need to build it first? %v",
		e.Path, e.Source, e.Err)
}

func (e *LocateError) Unwrap() error { return e.Err }
func (e *LocateError) Kind() Kind    { return KindLocate }

// SpawnError reports that the process never started.
type SpawnError struct {
	Command []string
	Dir     string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s in %s: %v", formatCommand(e.Command), e.Dir, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }
func (e *SpawnError) Kind() Kind    { return KindSpawn }

// OutcomeError carries the full diagnostic bundle of a process that ran
// and did not exit successfully.
type OutcomeError struct {
	Result *ProcessResult
}

func (e *OutcomeError) Error() string {
	var b strings.Builder
	b.WriteString("command exited badly:\n")
	writeDiagnostics(&b, e.Result)
	return b.String()
}

func (e *OutcomeError) Kind() Kind { return KindOutcome }

// TimeoutError reports a child killed at its deadline. Result holds
// whatever output was captured before the kill.
type TimeoutError struct {
	Timeout time.Duration
	Result  *ProcessResult
}

func (e *TimeoutError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "command timed out after %v:\n", e.Timeout)
	writeDiagnostics(&b, e.Result)
	return b.String()
}

func (e *TimeoutError) Kind() Kind { return KindTimeout }

// InterruptedError reports a child killed because the caller's context
// ended. The binary is not to blame, so it never counts as an expected
// failure.
type InterruptedError struct {
	Err    error
	Result *ProcessResult
}

func (e *InterruptedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "command interrupted: %v:\n", e.Err)
	writeDiagnostics(&b, e.Result)
	return b.String()
}

func (e *InterruptedError) Unwrap() error { return e.Err }
func (e *InterruptedError) Kind() Kind    { return KindCancel }

func writeDiagnostics(b *strings.Builder, r *ProcessResult) {
	if r == nil {
		return
	}
	fmt.Fprintf(b, "command: %s\n", r.CommandLine())
	fmt.Fprintf(b, "cwd: %s\n", r.Dir)
	fmt.Fprintf(b, "status: %s\n", r.Status)
	fmt.Fprintf(b, "stdout:\n%s\n", r.Stdout)
	fmt.Fprintf(b, "stderr:\n%s", r.Stderr)
}

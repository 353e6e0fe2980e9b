package harness

import (
	"errors"
	"fmt"
	"time"
)

// Status is the per-case verdict reported to the surrounding runner.
type Status string

const (
	StatusPassed          Status = "passed"
	StatusFailed          Status = "failed"
	StatusSkipped         Status = "skipped"
	StatusExpectedFailure Status = "expected-failure"
	StatusUnexpectedPass  Status = "unexpected-pass"
)

// OK reports whether the status counts as a pass for the run.
func (s Status) OK() bool {
	switch s {
	case StatusPassed, StatusSkipped, StatusExpectedFailure:
		return true
	default:
		return false
	}
}

// Outcome is the structured result of executing one case.
type Outcome struct {
	Case      string
	Mode      Mode
	Status    Status
	Err       error          // nil for passed and skipped
	Result    *ProcessResult // nil when the process never ran
	Workspace string         // empty once removed
	Duration  time.Duration
}

// Verdict returns nil iff the process exited normally with code zero.
// Anything else is an *OutcomeError carrying the status and both streams.
func Verdict(result *ProcessResult) error {
	if result.Status.Success() {
		return nil
	}
	return &OutcomeError{Result: result}
}

// judge maps a case's mode and the error from staging, running and
// Verdict onto a Status.
func judge(mode Mode, err error) (Status, error) {
	if mode.Kind != ModeExpectFailure {
		if err != nil {
			return StatusFailed, err
		}
		return StatusPassed, nil
	}

	var outcomeErr *OutcomeError
	switch {
	case err == nil:
		return StatusUnexpectedPass, fmt.Errorf("expected failure (%s), but the command succeeded", mode.Reason)
	case errors.As(err, &outcomeErr):
		return StatusExpectedFailure, err
	default:
		return StatusFailed, err
	}
}

package testenv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tectest/harness"
)

// AssertOutcome verifies a case ended acceptably for its mode. The failure
// message carries the full diagnostics.
func AssertOutcome(tb testing.TB, outcome harness.Outcome) {
	tb.Helper()
	assert.True(tb, outcome.Status.OK(),
		"Case %s: %s\n%v", outcome.Case, outcome.Status, outcome.Err)
}

// AssertSuccess verifies the binary exited with code 0.
func AssertSuccess(tb testing.TB, result *harness.ProcessResult) {
	tb.Helper()
	assert.NoError(tb, harness.Verdict(result))
}

// AssertFailure verifies the binary did not exit successfully.
func AssertFailure(tb testing.TB, result *harness.ProcessResult) {
	tb.Helper()
	assert.False(tb, result.Status.Success(),
		"Expected failure, got %s.\nCommand: %s\nStdout: %s",
		result.Status, result.CommandLine(), result.Stdout)
}

// AssertStdoutContains verifies stdout contains the expected string.
func AssertStdoutContains(tb testing.TB, result *harness.ProcessResult, expected string) {
	tb.Helper()
	assert.Contains(tb, string(result.Stdout), expected,
		"Expected stdout to contain %q.\nActual stdout: %s",
		expected, result.Stdout)
}

// AssertStderrNotEmpty verifies the binary explained itself on stderr.
func AssertStderrNotEmpty(tb testing.TB, result *harness.ProcessResult) {
	tb.Helper()
	assert.NotEmpty(tb, strings.TrimSpace(string(result.Stderr)),
		"Expected a diagnostic on stderr.\nCommand: %s", result.CommandLine())
}

// RequireResult returns the process result of outcome, failing the test
// when the process never ran.
func RequireResult(tb testing.TB, outcome harness.Outcome) *harness.ProcessResult {
	tb.Helper()
	require.NotNil(tb, outcome.Result, "Case %s never ran: %v", outcome.Case, outcome.Err)
	return outcome.Result
}

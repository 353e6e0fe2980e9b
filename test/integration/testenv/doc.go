// Package testenv adapts the harness to go test for end-to-end tests of
// the tectonic executable. The binary is resolved once from TestMain; each
// test gets its own workspace and a logger routed through t.Logf.
//
// Environment variables consulted:
//   - TECTONIC_BIN_PATH: directory holding the binary under test
//   - TECTONIC_TEST_ROOT: root of the test-asset tree
//   - TECTONIC_TEST_TIMEOUT: per-invocation timeout (unset = none)
//   - TECTONIC_KEEP_WORKSPACE: "1" keeps the workspaces of failed tests
//   - TECTONIC_RUN_IGNORED: "1" runs cases registered as skipped
package testenv

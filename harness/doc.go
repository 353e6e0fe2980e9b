// Package harness runs a separately built executable end to end.
//
// A run resolves the binary once (Locate), then for every Case stages the
// case's fixtures into a private workspace (Stager), invokes the binary
// there (Runner) and turns the captured exit status and streams into a
// verdict (Verdict, Outcome). Suite executes many cases concurrently.
//
// Environment variables consumed:
//   - TECTONIC_BIN_PATH: directory holding the binary under test
//
// The harness never inspects what the binary writes; only exit status,
// stdout and stderr are observed.
package harness

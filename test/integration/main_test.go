//go:build integration

// Package integration_test runs the registered cases against a built
// tectonic executable. The binary is resolved once via TestMain; a missing
// binary aborts the whole run before any workspace is staged.
package integration_test

import (
	"log"
	"os"
	"testing"

	"tectest/test/integration/testenv"
)

func TestMain(m *testing.M) {
	exe, err := testenv.LocateBinary()
	if err != nil {
		log.Fatalf("Failed to locate binary: %v", err)
	}
	log.Printf("Testing %s", exe)

	os.Exit(m.Run())
}

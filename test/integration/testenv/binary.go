package testenv

import (
	"sync"

	"tectest/harness"
)

var (
	executable harness.Executable
	locateOnce sync.Once
	locateErr  error
)

// LocateBinary resolves the binary under test once per test process.
// Call this from TestMain and abort the run on error: no test can pass
// without the binary.
func LocateBinary() (harness.Executable, error) {
	locateOnce.Do(func() {
		executable, locateErr = harness.Locate(harness.LocatorOptions{})
	})
	return executable, locateErr
}

// Executable returns the binary resolved by LocateBinary.
func Executable() harness.Executable {
	return executable
}

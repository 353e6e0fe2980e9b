// Package cases registers the end-to-end cases for the tectonic executable.
package cases

import "tectest/harness"

// Format is the bundle format every document case compiles with.
const Format = "--format=plain.fmt.gz"

// Executable returns a fresh registry of the executable cases.
// Keep alphabetized.
func Executable() *harness.Registry {
	return harness.NewRegistry().MustRegister(
		harness.Case{
			Name: "help_flag",
			Args: []string{"-h"},
			Mode: harness.Run(),
		},
		harness.Case{
			Name: "missing_input",
			Args: []string{Format, "nonexistent.tex"},
			Mode: harness.ExpectFailure("nonexistent input document must be rejected"),
		},
		harness.Case{
			Name: "relative_include",
			Fixtures: []string{
				"subdirectory/relative_include.tex",
				"subdirectory/content/1.tex",
			},
			Args: []string{Format, "subdirectory/relative_include.tex"},
			Mode: harness.Skip("GitHub #31"),
		},
		// Regression #36
		harness.Case{
			Name:     "test_space",
			Fixtures: []string{"test space.tex"},
			Args:     []string{Format, "test space.tex"},
			Mode:     harness.Run(),
		},
	)
}

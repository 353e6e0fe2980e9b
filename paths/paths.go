package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// TestRootEnv names the root of the test-asset tree.
const TestRootEnv = "TECTONIC_TEST_ROOT"

// GetTectestHome returns TECTEST_HOME or ~/.tectest default
func GetTectestHome() string {
	home := os.Getenv("TECTEST_HOME")
	if home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".tectest"
		}
		return filepath.Join(homeDir, ".tectest")
	}
	return ExpandPath(home)
}

// GetDBPath returns $TECTEST_HOME/history.db
func GetDBPath() string {
	return filepath.Join(GetTectestHome(), "history.db")
}

// GetSettingsPath returns $TECTEST_HOME/settings.json
func GetSettingsPath() string {
	return filepath.Join(GetTectestHome(), "settings.json")
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			if len(path) == 1 {
				return homeDir
			}
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}

// TestRoot returns $TECTONIC_TEST_ROOT, or the nearest directory at or
// above the working directory that contains go.mod.
func TestRoot() (string, error) {
	if root := os.Getenv(TestRootEnv); root != "" {
		return filepath.Abs(ExpandPath(root))
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	root, err := FindModuleRoot(wd)
	if err != nil {
		return "", fmt.Errorf("%s is not set: %w", TestRootEnv, err)
	}
	return root, nil
}

// FixturesDir returns the fixtures directory below a test root.
func FixturesDir(root string) string {
	return filepath.Join(root, "tests", "executable")
}

// FixturesRoot returns FixturesDir(TestRoot()).
func FixturesRoot() (string, error) {
	root, err := TestRoot()
	if err != nil {
		return "", err
	}
	return FixturesDir(root), nil
}

// FindModuleRoot walks up from dir to the first directory holding go.mod.
func FindModuleRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("no go.mod found in any parent directory")
		}
		dir = parent
	}
}

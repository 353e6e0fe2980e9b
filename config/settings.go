package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"tectest/paths"
)

// Settings represents the structure of $TECTEST_HOME/settings.json
type Settings struct {
	BinPath     string      `json:"bin_path,omitempty"`
	DBPath      string      `json:"db_path,omitempty"`
	Debug       *bool       `json:"debug,omitempty"`
	Env         StringArray `json:"env,omitempty"`
	KeepFailed  *bool       `json:"keep_failed,omitempty"`
	MaxLogFiles *int        `json:"max_log_files,omitempty"`
	Parallel    *int        `json:"parallel,omitempty"`
	TestRoot    string      `json:"test_root,omitempty"`
	Timeout     *Duration   `json:"timeout,omitempty"`
}

// StringArray supports both JSON arrays and comma-separated strings
type StringArray []string

// UnmarshalJSON implements custom unmarshaling for StringArray
func (sa *StringArray) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*sa = arr
		return nil
	}

	// Fall back to comma-separated string
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*sa = parseCommaSeparated(str)
	return nil
}

// Duration accepts "90s" style strings or a number of seconds
type Duration time.Duration

// UnmarshalJSON implements custom unmarshaling for Duration
func (d *Duration) UnmarshalJSON(data []byte) error {
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err == nil {
		*d = Duration(time.Duration(seconds * float64(time.Second)))
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(str)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", str, err)
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", str)
	}
	*d = Duration(parsed)
	return nil
}

// parseCommaSeparated splits comma-separated string and trims whitespace
func parseCommaSeparated(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// LoadSettings loads settings from $TECTEST_HOME/settings.json
// Returns empty Settings if file doesn't exist (not an error)
func LoadSettings() (*Settings, error) {
	path := paths.GetSettingsPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil // Not an error, use defaults
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("invalid settings.json: %w", err)
	}

	// Expand paths that start with ~
	if settings.BinPath != "" {
		settings.BinPath = paths.ExpandPath(settings.BinPath)
	}
	if settings.DBPath != "" {
		settings.DBPath = paths.ExpandPath(settings.DBPath)
	}
	if settings.TestRoot != "" {
		settings.TestRoot = paths.ExpandPath(settings.TestRoot)
	}

	return &settings, nil
}

// TimeoutFromEnv reads TECTONIC_TEST_TIMEOUT. Unset or empty means no timeout.
func TimeoutFromEnv() (time.Duration, error) {
	raw := os.Getenv("TECTONIC_TEST_TIMEOUT")
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid TECTONIC_TEST_TIMEOUT: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid TECTONIC_TEST_TIMEOUT: %v is negative", d)
	}
	return d, nil
}

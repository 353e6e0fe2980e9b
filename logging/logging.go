// Package logging holds the process-wide slog logger and its debug file
// setup, shared by the CLI and the harness.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	// DebugEnv enables debug logging in this process and every child
	// tectest process it spawns.
	DebugEnv = "TECTEST_DEBUG"
	// DebugFileEnv pins the log file so children append to the parent's log.
	DebugFileEnv = "TECTEST_DEBUG_FILE"
	// MaxLogFilesEnv carries the rotation limit to children.
	MaxLogFilesEnv = "TECTEST_MAX_LOG_FILES"
)

// DefaultMaxLogFiles is the rotation limit when none is configured
const DefaultMaxLogFiles = 1000

// Logger is the logger shared by every package. The harness, runner and
// store fall back to it when no logger is injected, so until Initialize
// enables debug logging their records are discarded.
var Logger = discard()

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// Initialize points Logger at a JSON log file when debug is set, a debug
// file is given, or either is inherited through the environment. Without
// a custom file it writes a fresh UUID-named file in the per-OS log
// directory after rotating down to maxLogFiles. It returns the path in
// use, or "" when logs are discarded.
func Initialize(debug bool, debugFile string, maxLogFiles int) (string, error) {
	debug, debugFile, maxLogFiles = fromEnv(debug, debugFile, maxLogFiles)

	if !debug && debugFile == "" {
		Logger = discard()
		return "", nil
	}

	logFilePath, err := openPath(debugFile, maxLogFiles)
	if err != nil {
		return "", err
	}

	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create log file: %w", err)
	}

	Logger = slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Only the process where the user asked for debug prints the path to
	// stderr. Children inherit DebugEnv and stay quiet, so a run's report
	// is not interleaved with one notice per spawned process.
	if os.Getenv(DebugEnv) == "" {
		Logger.Info("Debug logging initialized", "log_file", logFilePath)
		fmt.Fprintf(os.Stderr, "Debug mode enabled. Logs: %s\n", logFilePath)
	}

	return logFilePath, nil
}

// fromEnv merges inherited settings. DebugEnv=1 forces debug on, and
// DebugFileEnv and MaxLogFilesEnv apply only where the caller kept the
// defaults.
func fromEnv(debug bool, debugFile string, maxLogFiles int) (bool, string, int) {
	if os.Getenv(DebugEnv) == "1" {
		debug = true
	}
	if env := os.Getenv(DebugFileEnv); env != "" && debugFile == "" {
		debugFile = env
	}
	if env := os.Getenv(MaxLogFilesEnv); env != "" && maxLogFiles == DefaultMaxLogFiles {
		if parsed, err := strconv.Atoi(env); err == nil {
			maxLogFiles = parsed
		}
	}
	return debug, debugFile, maxLogFiles
}

// openPath picks the file to log to, creating its directory. A custom
// debugFile is used as is and never rotated.
func openPath(debugFile string, maxLogFiles int) (string, error) {
	if debugFile != "" {
		if err := os.MkdirAll(filepath.Dir(debugFile), 0755); err != nil {
			return "", fmt.Errorf("failed to create log directory: %w", err)
		}
		return debugFile, nil
	}

	logDir, err := getLogDir()
	if err != nil {
		return "", fmt.Errorf("failed to get log directory: %w", err)
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	if maxLogFiles > 0 {
		if err := rotateLogs(logDir, maxLogFiles); err != nil {
			// Logging still works with too many files around
			fmt.Fprintf(os.Stderr, "Warning: log rotation failed: %v\n", err)
		}
	}

	return filepath.Join(logDir, uuid.New().String()+".log"), nil
}

// rotateLogs removes old log files if there are more than maxLogFiles
func rotateLogs(logDir string, maxLogFiles int) error {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	type logFileInfo struct {
		path    string
		modTime time.Time
	}
	var logFiles []logFileInfo

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		logFiles = append(logFiles, logFileInfo{
			path:    filepath.Join(logDir, entry.Name()),
			modTime: info.ModTime(),
		})
	}

	if len(logFiles) < maxLogFiles {
		return nil
	}

	// Oldest first
	sort.Slice(logFiles, func(i, j int) bool {
		return logFiles[i].modTime.Before(logFiles[j].modTime)
	})

	numToDelete := len(logFiles) - maxLogFiles + 1 // +1 to make room for the new log
	for i := 0; i < numToDelete && i < len(logFiles); i++ {
		if err := os.Remove(logFiles[i].path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to delete old log file %s: %v\n", logFiles[i].path, err)
		}
	}

	return nil
}

// getLogDir returns the OS-specific log directory
func getLogDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Logs", "tectest"), nil
	case "linux":
		stateHome := os.Getenv("XDG_STATE_HOME")
		if stateHome == "" {
			stateHome = filepath.Join(homeDir, ".local", "state")
		}
		return filepath.Join(stateHome, "tectest"), nil
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, "tectest", "logs"), nil
	default:
		return filepath.Join(homeDir, ".tectest", "logs"), nil
	}
}

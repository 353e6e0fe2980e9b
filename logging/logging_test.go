package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLogFiles(t *testing.T, dir string, n int) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%02d.log", i))
		require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))
		mtime := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
}

func TestRotateLogsRemovesOldest(t *testing.T) {
	dir := t.TempDir()
	writeLogFiles(t, dir, 5)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), nil, 0644))

	require.NoError(t, rotateLogs(dir, 3))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	// Room is made for the log about to be created
	assert.ElementsMatch(t, []string{"03.log", "04.log", "keep.txt"}, names)
}

func TestRotateLogsUnderLimit(t *testing.T) {
	dir := t.TempDir()
	writeLogFiles(t, dir, 2)

	require.NoError(t, rotateLogs(dir, 3))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestInitializeDiscardsWithoutDebug(t *testing.T) {
	t.Setenv(DebugEnv, "")
	t.Setenv(DebugFileEnv, "")

	path, err := Initialize(false, "", DefaultMaxLogFiles)

	require.NoError(t, err)
	assert.Empty(t, path)
	assert.NotNil(t, Logger)
}

func TestInitializeWithDebugFile(t *testing.T) {
	t.Setenv(DebugEnv, "")
	t.Setenv(DebugFileEnv, "")
	logPath := filepath.Join(t.TempDir(), "nested", "debug.log")

	path, err := Initialize(false, logPath, DefaultMaxLogFiles)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = Initialize(false, "", DefaultMaxLogFiles) })

	assert.Equal(t, logPath, path)
	Logger.Info("hello from test")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}

func TestFromEnv(t *testing.T) {
	t.Setenv(DebugEnv, "1")
	t.Setenv(DebugFileEnv, "/tmp/parent.log")
	t.Setenv(MaxLogFilesEnv, "7")

	debug, file, limit := fromEnv(false, "", DefaultMaxLogFiles)
	assert.True(t, debug)
	assert.Equal(t, "/tmp/parent.log", file)
	assert.Equal(t, 7, limit)

	_, file, limit = fromEnv(false, "/tmp/own.log", 20)
	assert.Equal(t, "/tmp/own.log", file, "explicit file wins over the inherited one")
	assert.Equal(t, 20, limit, "explicit limit wins over the inherited one")
}

func TestInitializeInheritedDebugAppendsToParentFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "parent.log")
	t.Setenv(DebugEnv, "1")
	t.Setenv(DebugFileEnv, logPath)

	path, err := Initialize(false, "", DefaultMaxLogFiles)
	require.NoError(t, err)
	t.Cleanup(func() { Logger = discard() })

	assert.Equal(t, logPath, path)
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Debug logging initialized", "inherited debug does not announce")
}

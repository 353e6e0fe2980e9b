package harness

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tectest/internal/fakebin"
)

func TestMain(m *testing.M) {
	// Child processes started by the tests re-enter here as the fake binary
	fakebin.Main()
	os.Exit(m.Run())
}

// fixtureFiles mirrors the layout of the real fixtures tree.
var fixtureFiles = map[string]string{
	"test space.tex":                    "Hello, world.\n\\bye\n",
	"subdirectory/relative_include.tex": "\\input content/1.tex\n\\bye\n",
	"subdirectory/content/1.tex":        "Included from a relative path.\n",
}

// writeFixtures creates a fixtures root and returns its path.
func writeFixtures(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range fixtureFiles {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

// fakeExecutable installs the test binary as "tectonic" in a build-like
// directory and resolves it.
func fakeExecutable(t *testing.T) Executable {
	t.Helper()
	dir, err := fakebin.Install(filepath.Join(t.TempDir(), "target", "debug"), DefaultBinaryName)
	require.NoError(t, err)

	exe, err := Locate(LocatorOptions{BinDir: dir})
	require.NoError(t, err)
	return exe
}

func fakeRunner(t *testing.T, opts RunnerOptions) *Runner {
	t.Helper()
	opts.Env = append(opts.Env, fakebin.Env)
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	return NewRunner(fakeExecutable(t), opts)
}

func fakeHarness(t *testing.T, opts Options) *Harness {
	t.Helper()
	opts.Env = append(opts.Env, fakebin.Env)
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	stager := NewStager(writeFixtures(t)).WithTempDir(t.TempDir())
	return New(fakeExecutable(t), stager, opts)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

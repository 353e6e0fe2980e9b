package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"tectest/config"
	"tectest/internal/fakebin"
)

func TestMain(m *testing.M) {
	// The fake tectonic re-enters here
	fakebin.Main()
	os.Exit(m.Run())
}

// testEnv isolates a command invocation from the developer's environment.
type testEnv struct {
	t        *testing.T
	dbPath   string
	binDir   string
	testRoot string
	settings *config.Settings
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("TECTEST_HOME", home)
	for _, key := range []string{
		"TECTEST_DB_PATH", "TECTEST_DEBUG", "TECTEST_DEBUG_FILE", "TECTEST_MAX_LOG_FILES",
		"TECTONIC_BIN_PATH", "TECTONIC_TEST_ROOT", "TECTONIC_TEST_TIMEOUT",
		"TECTONIC_KEEP_WORKSPACE", "TECTONIC_RUN_IGNORED",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	binDir, err := fakebin.Install(filepath.Join(t.TempDir(), "target", "debug"), "tectonic")
	require.NoError(t, err)

	return &testEnv{
		t:        t,
		dbPath:   filepath.Join(home, "history.db"),
		binDir:   binDir,
		testRoot: writeTestRoot(t),
		settings: &config.Settings{},
	}
}

// run parses args like main does and executes the selected command.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	var cli CLI
	var out bytes.Buffer
	cli.SetSettings(e.settings)
	cli.SetOutput(&out)

	parser, err := kong.New(&cli,
		kong.Name("tectest"),
		kong.Vars{"version": "tectest test"},
		kong.Bind(&cli),
		kong.Exit(func(int) { e.t.Fatal("unexpected exit") }),
	)
	require.NoError(e.t, err)

	ctx, err := parser.Parse(append([]string{"--db-path", e.dbPath}, args...))
	if err != nil {
		return out.String(), err
	}
	err = ctx.Run()
	return out.String(), err
}

// runArgs are the flags pointing run at the fake binary and fixtures.
func (e *testEnv) runArgs(extra ...string) []string {
	args := []string{"run",
		"--bin-path", e.binDir,
		"--test-root", e.testRoot,
		"--env", fakebin.Env,
	}
	return append(args, extra...)
}

func writeTestRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"test space.tex":                    "Hello.\n\\bye\n",
		"subdirectory/relative_include.tex": "\\input content/1.tex\n\\bye\n",
		"subdirectory/content/1.tex":        "Included.\n",
	}
	for name, content := range files {
		path := filepath.Join(root, "tests", "executable", filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

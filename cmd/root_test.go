package cmd

import (
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tectest/config"
)

func parseCLI(t *testing.T, settings *config.Settings, args ...string) *CLI {
	t.Helper()
	var cli CLI
	cli.SetSettings(settings)
	parser, err := kong.New(&cli, kong.Vars{"version": "tectest test"}, kong.Bind(&cli))
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)
	return &cli
}

func TestDBPathPrecedence(t *testing.T) {
	env := newTestEnv(t)
	fromSettings := filepath.Join(t.TempDir(), "settings.db")
	fromEnv := filepath.Join(t.TempDir(), "env.db")
	fromFlag := filepath.Join(t.TempDir(), "flag.db")

	cli := parseCLI(t, &config.Settings{}, "list")
	assert.Equal(t, env.dbPath, cli.DBPath, "TECTEST_HOME decides the default")

	cli = parseCLI(t, &config.Settings{DBPath: fromSettings}, "list")
	assert.Equal(t, fromSettings, cli.DBPath)

	t.Setenv("TECTEST_DB_PATH", fromEnv)
	cli = parseCLI(t, &config.Settings{DBPath: fromSettings}, "list")
	assert.Equal(t, fromEnv, cli.DBPath)

	cli = parseCLI(t, &config.Settings{DBPath: fromSettings}, "--db-path", fromFlag, "list")
	assert.Equal(t, fromFlag, cli.DBPath)
}

func TestMaxLogFilesFromSettings(t *testing.T) {
	newTestEnv(t)
	keep := 5

	cli := parseCLI(t, &config.Settings{MaxLogFiles: &keep}, "list")

	assert.Equal(t, 5, cli.MaxLogFiles)
}

func TestRunSettingsFillDefaults(t *testing.T) {
	env := newTestEnv(t)
	parallel := 3
	keep := true
	timeout := config.Duration(0)
	env.settings = &config.Settings{Parallel: &parallel, KeepFailed: &keep, Timeout: &timeout, TestRoot: env.testRoot, Env: config.StringArray{"A=1"}}

	cli := parseCLI(t, env.settings, "run", "--env", "B=2")
	cli.Run.applySettings(cli)

	assert.Equal(t, 3, cli.Run.Parallel)
	assert.True(t, cli.Run.KeepFailed)
	assert.Equal(t, env.testRoot, cli.Run.TestRoot)
	assert.Equal(t, []string{"A=1", "B=2"}, cli.Run.Env)
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"tectest/harness"
	"tectest/logging"
	"tectest/paths"
	"tectest/report"
	"tectest/storage"
)

// RunCmd runs cases against the binary under test
type RunCmd struct {
	Names          []string      `arg:"" optional:"" help:"Cases to run, skipped ones included (default: every runnable case)"`
	BinPath        string        `help:"Directory holding the binary under test (overrides $TECTONIC_BIN_PATH)" type:"path"`
	Binary         string        `help:"Executable name, without extension" default:"tectonic"`
	TestRoot       string        `help:"Root of the test-asset tree (overrides $TECTONIC_TEST_ROOT)" type:"path"`
	Manifest       string        `help:"Load cases from a YAML manifest instead of the built-in registry" type:"existingfile"`
	Parallel       int           `help:"Maximum concurrent cases (0 = GOMAXPROCS)" short:"p" default:"0"`
	Timeout        time.Duration `help:"Kill an invocation after this long (0 = no limit)" env:"TECTONIC_TEST_TIMEOUT" default:"0s"`
	IncludeSkipped bool          `help:"Also run cases marked skip" env:"TECTONIC_RUN_IGNORED"`
	KeepWorkspaces bool          `help:"Keep every workspace on disk"`
	KeepFailed     bool          `help:"Keep the workspaces of failing cases" env:"TECTONIC_KEEP_WORKSPACE"`
	Env            []string      `help:"Extra KEY=VALUE pairs for the child environment" short:"e" sep:"none"`
	Format         string        `help:"Output format: text or json" enum:"text,json" default:"text"`
	NoRecord       bool          `help:"Do not record the run in the history database"`
}

// Run executes the run command
func (r *RunCmd) Run(cli *CLI) error {
	r.applySettings(cli)
	if r.Timeout < 0 {
		return fmt.Errorf("invalid timeout %v: must not be negative", r.Timeout)
	}

	reg, err := loadRegistry(r.Manifest)
	if err != nil {
		return err
	}

	// A missing binary aborts before any workspace is staged
	exe, err := locate(cli, r.BinPath, r.Binary)
	if err != nil {
		return err
	}

	fixtures, err := r.fixturesRoot()
	if err != nil {
		return fmt.Errorf("failed to resolve fixtures: %w", err)
	}

	h := harness.New(exe, harness.NewStager(fixtures), harness.Options{
		Timeout:        r.Timeout,
		Env:            r.Env,
		KeepWorkspaces: r.KeepWorkspaces,
		KeepFailed:     r.KeepFailed,
		Logger:         logging.Logger,
	})
	suite := &harness.Suite{Harness: h, Parallel: r.Parallel}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logging.Logger.Info("Starting run",
		"binary", exe.Path,
		"fixtures", fixtures,
		"names", r.Names,
		"parallel", r.Parallel,
		"timeout", r.Timeout)

	rep, err := suite.Run(ctx, reg, harness.SelectOptions{Names: r.Names, IncludeSkipped: r.IncludeSkipped})
	if err != nil {
		return err
	}

	if !r.NoRecord {
		r.record(ctx, cli, rep)
	}

	doc := report.FromReport(rep)
	if r.Format == "json" {
		err = report.JSON(cli.Out(), doc)
	} else {
		err = report.Text(cli.Out(), doc)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if !rep.OK() {
		return fmt.Errorf("%d of %d cases failed", len(rep.Failures()), len(rep.Outcomes))
	}
	return nil
}

// applySettings fills options still at their defaults from settings.json
func (r *RunCmd) applySettings(cli *CLI) {
	s := cli.Settings()

	if r.Parallel == 0 && s.Parallel != nil {
		r.Parallel = *s.Parallel
	}
	if r.Timeout == 0 && s.Timeout != nil {
		if _, hasEnv := lookupNonEmpty("TECTONIC_TEST_TIMEOUT"); !hasEnv {
			r.Timeout = time.Duration(*s.Timeout)
		}
	}
	if !r.KeepFailed && s.KeepFailed != nil {
		if _, hasEnv := os.LookupEnv("TECTONIC_KEEP_WORKSPACE"); !hasEnv {
			r.KeepFailed = *s.KeepFailed
		}
	}
	if r.TestRoot == "" && s.TestRoot != "" {
		if _, hasEnv := lookupNonEmpty(paths.TestRootEnv); !hasEnv {
			r.TestRoot = s.TestRoot
		}
	}
	// Settings env entries come first so --env can override them
	if len(s.Env) > 0 {
		r.Env = append(append([]string{}, s.Env...), r.Env...)
	}
}

func (r *RunCmd) fixturesRoot() (string, error) {
	if r.TestRoot != "" {
		return paths.FixturesDir(r.TestRoot), nil
	}
	return paths.FixturesRoot()
}

// record saves the report to the history database. Failing to record is
// reported but never fails the run.
func (r *RunCmd) record(ctx context.Context, cli *CLI, rep *harness.Report) {
	store, err := storage.NewStore(cli.DBPath)
	if err != nil {
		logging.Logger.Warn("Failed to open history database", "error", err)
		fmt.Fprintf(os.Stderr, "Warning: run not recorded: %v\n", err)
		return
	}
	defer store.Close()

	// Record even when interrupted
	if err := store.SaveReport(context.WithoutCancel(ctx), rep); err != nil {
		logging.Logger.Warn("Failed to record run", "error", err, "run_id", rep.ID)
		fmt.Fprintf(os.Stderr, "Warning: run not recorded: %v\n", err)
		return
	}
	logging.Logger.Info("Run recorded", "run_id", rep.ID, "db_path", cli.DBPath)
}

// lookupNonEmpty treats an empty environment variable as unset
func lookupNonEmpty(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	return v, ok && v != ""
}

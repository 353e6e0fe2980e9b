package cmd

import (
	"fmt"

	"tectest/harness"
	"tectest/logging"
)

// LocateCmd prints where the binary under test resolves to
type LocateCmd struct {
	BinPath string `help:"Directory holding the binary under test (overrides $TECTONIC_BIN_PATH)" type:"path"`
	Binary  string `help:"Executable name, without extension" default:"tectonic"`
}

// Run executes the locate command
func (l *LocateCmd) Run(cli *CLI) error {
	exe, err := locate(cli, l.BinPath, l.Binary)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.Out(), exe)
	return nil
}

// locate resolves the binary, consulting settings.json when neither the
// flag nor $TECTONIC_BIN_PATH names a directory
func locate(cli *CLI, binPath, name string) (harness.Executable, error) {
	opts := harness.LocatorOptions{Name: name, BinDir: binPath}
	if opts.BinDir == "" && cli.Settings().BinPath != "" {
		if v, ok := lookupNonEmpty(harness.BinPathEnv); !ok {
			opts.BinDir = cli.Settings().BinPath
		} else {
			logging.Logger.Debug("Environment overrides settings bin_path", "env", v)
		}
	}

	exe, err := harness.Locate(opts)
	if err != nil {
		logging.Logger.Error("Failed to locate binary", "error", err)
		return harness.Executable{}, err
	}
	logging.Logger.Info("Located binary", "path", exe.Path, "source", exe.Source)
	return exe, nil
}

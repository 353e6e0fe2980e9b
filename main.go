package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"tectest/cmd"
	"tectest/config"
	"tectest/version"
)

func main() {
	// Load settings from $TECTEST_HOME/settings.json
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load settings: %v\n", err)
		settings = &config.Settings{}
	}

	var cli cmd.CLI
	cli.SetSettings(settings) // Set settings before parsing, AfterApply reads them
	ctx := kong.Parse(&cli,
		kong.Name("tectest"),
		kong.Description(version.Tagline),
		kong.Vars{
			"version": version.Info(),
		},
		kong.UsageOnError(),
		kong.Bind(&cli),
	)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

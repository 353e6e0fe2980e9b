package cmd

import (
	"fmt"
	"io"
	"os"

	"tectest/config"
	"tectest/logging"
	"tectest/paths"

	"github.com/alecthomas/kong"
)

const defaultDBPath = "~/.tectest/history.db"

// CLI represents the command-line interface structure
type CLI struct {
	Version     kong.VersionFlag `help:"Show version information"`
	Debug       bool             `help:"Enable debug logging to file" short:"d"`
	DebugFile   string           `help:"Custom path for debug log file (disables automatic cleanup)"`
	MaxLogFiles int              `help:"Maximum number of log files to keep (0 = unlimited)" default:"1000"`
	DBPath      string           `help:"Path to the run history database" type:"path" default:"~/.tectest/history.db" env:"TECTEST_DB_PATH"`

	List    ListCmd    `cmd:"list" help:"List registered cases with their run-mode"`
	Locate  LocateCmd  `cmd:"locate" help:"Resolve the binary under test"`
	Run     RunCmd     `cmd:"run" help:"Run cases against the binary under test"`
	History HistoryCmd `cmd:"history" help:"Inspect recorded runs"`

	// Internal fields (not flags)
	settings *config.Settings `kong:"-"`
	out      io.Writer        `kong:"-"`
}

// SetSettings sets the settings on the CLI struct
func (c *CLI) SetSettings(settings *config.Settings) {
	c.settings = settings
}

// SetOutput redirects command output, which defaults to stdout
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// Out returns the writer commands print to
func (c *CLI) Out() io.Writer {
	if c.out == nil {
		return os.Stdout
	}
	return c.out
}

// Settings returns the loaded settings, never nil
func (c *CLI) Settings() *config.Settings {
	if c.settings == nil {
		return &config.Settings{}
	}
	return c.settings
}

// AfterApply initializes logging after CLI parsing and applies settings
func (c *CLI) AfterApply() error {
	// Precedence: CLI flags > env vars > settings.json > defaults.
	// A setting only applies when the flag is at its default and the env var is unset.
	s := c.Settings()

	if c.DBPath == paths.ExpandPath(defaultDBPath) || c.DBPath == defaultDBPath {
		if _, hasEnv := os.LookupEnv("TECTEST_DB_PATH"); !hasEnv {
			if s.DBPath != "" {
				c.DBPath = s.DBPath
			} else if _, hasHome := os.LookupEnv("TECTEST_HOME"); hasHome {
				c.DBPath = paths.GetDBPath()
			}
		}
	}

	if c.MaxLogFiles == logging.DefaultMaxLogFiles {
		if _, hasEnv := os.LookupEnv(logging.MaxLogFilesEnv); !hasEnv {
			if s.MaxLogFiles != nil {
				c.MaxLogFiles = *s.MaxLogFiles
			}
		}
	}

	if !c.Debug {
		if _, hasEnv := os.LookupEnv(logging.DebugEnv); !hasEnv {
			if s.Debug != nil && *s.Debug {
				c.Debug = true
			}
		}
	}

	logFilePath, err := logging.Initialize(c.Debug, c.DebugFile, c.MaxLogFiles)
	if err != nil {
		return err
	}

	// Set after initialization so the store and any child process share the same log file
	if c.Debug || c.DebugFile != "" {
		os.Setenv(logging.DebugEnv, "1")
		if logFilePath != "" {
			os.Setenv(logging.DebugFileEnv, logFilePath)
		}
	}
	if c.MaxLogFiles != logging.DefaultMaxLogFiles {
		os.Setenv(logging.MaxLogFilesEnv, fmt.Sprintf("%d", c.MaxLogFiles))
	}

	logging.Logger.Debug("CLI initialized", "db_path", c.DBPath)
	return nil
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"tectest/report"
	"tectest/storage"
)

// HistoryCmd groups the run history commands
type HistoryCmd struct {
	List  HistoryListCmd  `cmd:"" help:"List recorded runs, newest first (default)" default:"withargs"`
	Show  HistoryShowCmd  `cmd:"show" help:"Show one recorded run with full diagnostics"`
	Prune HistoryPruneCmd `cmd:"prune" help:"Delete all but the newest runs"`
}

// HistoryListCmd lists recorded runs
type HistoryListCmd struct {
	Limit  int    `help:"Maximum number of runs to show (0 = all)" short:"n" default:"20"`
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// Run executes the history list command
func (h *HistoryListCmd) Run(cli *CLI) error {
	store, err := storage.NewStore(cli.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), h.Limit)
	if err != nil {
		return err
	}

	if h.Format == "json" {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(cli.Out(), string(data))
		return nil
	}

	if len(runs) == 0 {
		fmt.Fprintln(cli.Out(), "No recorded runs")
		return nil
	}
	return report.Runs(cli.Out(), runs)
}

// HistoryShowCmd shows one recorded run
type HistoryShowCmd struct {
	ID     string `arg:"" help:"Run ID or unique prefix"`
	Format string `help:"Output format: text or json" enum:"text,json" default:"text"`
}

// Run executes the history show command
func (h *HistoryShowCmd) Run(cli *CLI) error {
	store, err := storage.NewStore(cli.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	detail, err := store.GetRun(context.Background(), h.ID)
	if err != nil {
		return err
	}

	doc := report.FromDetail(detail)
	if h.Format == "json" {
		return report.JSON(cli.Out(), doc)
	}
	return report.Text(cli.Out(), doc)
}

// HistoryPruneCmd deletes old runs
type HistoryPruneCmd struct {
	Keep int `help:"Number of newest runs to keep" default:"50"`
}

// Run executes the history prune command
func (h *HistoryPruneCmd) Run(cli *CLI) error {
	store, err := storage.NewStore(cli.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	removed, err := store.PruneRuns(context.Background(), h.Keep)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.Out(), "Removed %d runs\n", removed)
	return nil
}

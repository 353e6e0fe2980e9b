package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"tectest/harness"

	"gopkg.in/yaml.v3"
)

// ListCmd lists registered cases
type ListCmd struct {
	Format   string `help:"Output format: table, json or yaml" enum:"table,json,yaml" default:"table"`
	Manifest string `help:"Load cases from a YAML manifest instead of the built-in registry" type:"existingfile"`
	Skipped  bool   `help:"Only list cases that are skipped by default"`
}

type listEntry struct {
	Name     string   `json:"name"`
	Mode     string   `json:"mode"`
	Reason   string   `json:"reason,omitempty"`
	Fixtures []string `json:"fixtures"`
	Args     []string `json:"args"`
}

// Run executes the list command
func (l *ListCmd) Run(cli *CLI) error {
	reg, err := loadRegistry(l.Manifest)
	if err != nil {
		return err
	}

	all := reg.All()
	if l.Skipped {
		all = reg.Skipped()
	}

	switch l.Format {
	case "json":
		return l.printJSON(cli, all)
	case "yaml":
		filtered := harness.NewRegistry()
		for _, c := range all {
			if err := filtered.Register(c); err != nil {
				return err
			}
		}
		enc := yaml.NewEncoder(cli.Out())
		enc.SetIndent(2)
		if err := enc.Encode(harness.ManifestFrom(filtered)); err != nil {
			return fmt.Errorf("failed to encode manifest: %w", err)
		}
		return enc.Close()
	default:
		return l.printTable(cli, all)
	}
}

func (l *ListCmd) printJSON(cli *CLI, all []harness.Case) error {
	entries := make([]listEntry, 0, len(all))
	for _, c := range all {
		entries = append(entries, listEntry{
			Name:     c.Name,
			Mode:     c.Mode.Kind.String(),
			Reason:   c.Mode.Reason,
			Fixtures: nonNil(c.Fixtures),
			Args:     nonNil(c.Args),
		})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(cli.Out(), string(data))
	return nil
}

func (l *ListCmd) printTable(cli *CLI, all []harness.Case) error {
	w := tabwriter.NewWriter(cli.Out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODE\tREASON\tFIXTURES\tARGS")
	for _, c := range all {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			c.Name,
			c.Mode.Kind,
			c.Mode.Reason,
			len(c.Fixtures),
			strings.Join(c.Args, " "))
	}
	w.Flush()

	fmt.Fprintf(cli.Out(), "\nTotal: %d cases\n", len(all))
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

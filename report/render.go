package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"tectest/internal/theme"
	"tectest/storage"
)

// Text writes a human-readable summary of doc. Failing cases are followed
// by their full diagnostics.
func Text(w io.Writer, doc Document) error {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("tectest run") + " " + theme.RunIDStyle.Render(doc.ID) + "\n")
	b.WriteString(theme.LabelStyle.Render("binary: ") + doc.Binary.Path)
	if doc.Binary.Source != "" {
		b.WriteString(theme.MutedStyle.Render(" (" + doc.Binary.Source + ")"))
	}
	b.WriteString("\n\n")

	width := 0
	for _, c := range doc.Cases {
		width = max(width, lipgloss.Width(c.Name))
	}
	for _, c := range doc.Cases {
		status := theme.StatusStyle(c.Status)
		line := fmt.Sprintf("  %s %s  %s",
			status.Render(theme.StatusIcon(c.Status)),
			theme.CaseNameStyle.Render(pad(c.Name, width)),
			status.Render(c.Status))
		if c.Reason != "" {
			line += theme.MutedStyle.Render(" (" + c.Reason + ")")
		}
		if c.ExitStatus != "" {
			line += theme.MutedStyle.Render(fmt.Sprintf("  %v", ms(c.DurationMS)))
		}
		b.WriteString(line + "\n")
	}

	failures := 0
	for _, c := range doc.Cases {
		if !c.Failed() {
			continue
		}
		if failures == 0 {
			b.WriteString("\n" + theme.ErrorStyle.Render("Failures:") + "\n")
		}
		failures++
		b.WriteString("\n" + theme.CaseNameStyle.Render("--- "+c.Name) + "\n")
		b.WriteString(strings.TrimRight(c.Error, "\n") + "\n")
		if c.Workspace != "" {
			b.WriteString(theme.LabelStyle.Render("workspace kept: ") + c.Workspace + "\n")
		}
	}

	b.WriteString("\n" + summary(doc) + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// JSON writes doc as indented JSON.
func JSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Runs writes a table of recorded runs, newest first.
func Runs(w io.Writer, runs []storage.Run) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tRESULT\tPASSED\tFAILED\tSKIPPED\tBINARY")
	for _, r := range runs {
		result := "ok"
		if !r.Success {
			result = "FAIL"
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\t%s\t%d\t%d\t%d\t%s\n",
			shortID(r.ID),
			r.StartedAt.Local().Format(time.DateTime),
			r.Duration(),
			result,
			r.Passed+r.ExpectedFailures,
			r.Failed+r.UnexpectedPasses,
			r.Skipped,
			r.BinaryPath)
	}
	return tw.Flush()
}

func summary(doc Document) string {
	c := doc.Counts
	parts := []string{fmt.Sprintf("%d passed", c.Passed)}
	if c.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", c.Failed))
	}
	if c.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", c.Skipped))
	}
	if c.ExpectedFailures > 0 {
		parts = append(parts, fmt.Sprintf("%d expected failures", c.ExpectedFailures))
	}
	if c.UnexpectedPasses > 0 {
		parts = append(parts, fmt.Sprintf("%d unexpected passes", c.UnexpectedPasses))
	}

	verdict := theme.StatusStyle("passed").Render("ok")
	if !doc.OK {
		verdict = theme.StatusStyle("failed").Render("FAILED")
	}
	return fmt.Sprintf("%s: %d cases, %s (%v)", verdict, c.Total(), strings.Join(parts, ", "), ms(doc.DurationMS))
}

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func ms(n int64) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

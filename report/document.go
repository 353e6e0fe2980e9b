// Package report renders suite runs, live or recorded, as styled text or
// JSON.
package report

import (
	"time"

	"tectest/harness"
	"tectest/storage"
)

// Document is the rendering-neutral form of one suite run.
type Document struct {
	ID         string         `json:"id"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMS int64          `json:"duration_ms"`
	Binary     Binary         `json:"binary"`
	OK         bool           `json:"ok"`
	Counts     harness.Counts `json:"counts"`
	Cases      []Case         `json:"cases"`
}

// Binary identifies the executable a run exercised.
type Binary struct {
	Path   string `json:"path"`
	Source string `json:"source"`
}

// Case is one case outcome within a Document.
type Case struct {
	Name        string `json:"name"`
	Mode        string `json:"mode"`
	Reason      string `json:"reason,omitempty"`
	Status      string `json:"status"`
	ExitStatus  string `json:"exit_status,omitempty"`
	CommandLine string `json:"command,omitempty"`
	Cwd         string `json:"cwd,omitempty"`
	Stdout      string `json:"stdout,omitempty"`
	Stderr      string `json:"stderr,omitempty"`
	Error       string `json:"error,omitempty"`
	Workspace   string `json:"workspace,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}

// Failed reports whether the case fails its run.
func (c Case) Failed() bool {
	return !harness.Status(c.Status).OK()
}

// FromReport converts a live suite report.
func FromReport(r *harness.Report) Document {
	doc := Document{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
		Binary:     Binary{Path: r.Executable.Path, Source: string(r.Executable.Source)},
		OK:         r.OK(),
		Counts:     r.Counts(),
		Cases:      make([]Case, 0, len(r.Outcomes)),
	}
	for _, o := range r.Outcomes {
		c := Case{
			Name:       o.Case,
			Mode:       o.Mode.Kind.String(),
			Reason:     o.Mode.Reason,
			Status:     string(o.Status),
			Workspace:  o.Workspace,
			DurationMS: o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			c.Error = o.Err.Error()
		}
		if res := o.Result; res != nil {
			c.ExitStatus = res.Status.String()
			c.CommandLine = res.CommandLine()
			c.Cwd = res.Dir
			c.Stdout = string(res.Stdout)
			c.Stderr = string(res.Stderr)
		}
		doc.Cases = append(doc.Cases, c)
	}
	return doc
}

// FromDetail converts a recorded run.
func FromDetail(d *storage.RunDetail) Document {
	doc := Document{
		ID:         d.Run.ID,
		StartedAt:  d.Run.StartedAt,
		DurationMS: d.Run.DurationMS,
		Binary:     Binary{Path: d.Run.BinaryPath, Source: d.Run.BinarySource},
		OK:         d.Run.Success,
		Counts: harness.Counts{
			Passed:           d.Run.Passed,
			Failed:           d.Run.Failed,
			Skipped:          d.Run.Skipped,
			ExpectedFailures: d.Run.ExpectedFailures,
			UnexpectedPasses: d.Run.UnexpectedPasses,
		},
		Cases: make([]Case, 0, len(d.Cases)),
	}
	for _, cr := range d.Cases {
		doc.Cases = append(doc.Cases, Case{
			Name:        cr.Name,
			Mode:        cr.Mode,
			Reason:      cr.Reason,
			Status:      cr.Status,
			ExitStatus:  cr.ExitStatus,
			CommandLine: cr.CommandLine,
			Cwd:         cr.Cwd,
			Stdout:      cr.Stdout,
			Stderr:      cr.Stderr,
			Error:       cr.Error,
			Workspace:   cr.Workspace,
			DurationMS:  cr.DurationMS,
		})
	}
	return doc
}

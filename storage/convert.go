package storage

import (
	"tectest/harness"
)

func convertFromReport(report *harness.Report) (Run, []CaseResult) {
	counts := report.Counts()
	run := Run{
		ID:               report.ID,
		StartedAt:        report.StartedAt.UTC(),
		DurationMS:       report.Duration.Milliseconds(),
		BinaryPath:       report.Executable.Path,
		BinarySource:     string(report.Executable.Source),
		Passed:           counts.Passed,
		Failed:           counts.Failed,
		Skipped:          counts.Skipped,
		ExpectedFailures: counts.ExpectedFailures,
		UnexpectedPasses: counts.UnexpectedPasses,
		Success:          report.OK(),
	}

	cases := make([]CaseResult, 0, len(report.Outcomes))
	for i, o := range report.Outcomes {
		cr := CaseResult{
			RunID:      report.ID,
			Position:   i,
			Name:       o.Case,
			Mode:       o.Mode.Kind.String(),
			Reason:     o.Mode.Reason,
			Status:     string(o.Status),
			Workspace:  o.Workspace,
			DurationMS: o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			cr.Error = o.Err.Error()
		}
		if r := o.Result; r != nil {
			cr.ExitStatus = r.Status.String()
			cr.CommandLine = r.CommandLine()
			cr.Cwd = r.Dir
			cr.Stdout = string(r.Stdout)
			cr.Stderr = string(r.Stderr)
		}
		cases = append(cases, cr)
	}
	return run, cases
}

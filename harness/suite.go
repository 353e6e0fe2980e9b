package harness

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// SelectOptions chooses which registered cases a Suite runs.
type SelectOptions struct {
	// Names runs exactly these cases, Skip mode included.
	Names []string
	// IncludeSkipped also runs Skip cases when Names is empty.
	IncludeSkipped bool
}

// Suite runs many cases concurrently against one Harness.
type Suite struct {
	Harness *Harness
	// Parallel bounds concurrent cases. Zero means GOMAXPROCS.
	Parallel int
}

// Counts aggregates outcomes by status.
type Counts struct {
	Passed           int `json:"passed"`
	Failed           int `json:"failed"`
	Skipped          int `json:"skipped"`
	ExpectedFailures int `json:"expected_failures"`
	UnexpectedPasses int `json:"unexpected_passes"`
}

// Total is the number of outcomes counted.
func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Skipped + c.ExpectedFailures + c.UnexpectedPasses
}

// Report is the result of one suite run, in registration order.
type Report struct {
	ID         string
	StartedAt  time.Time
	Duration   time.Duration
	Executable Executable
	Outcomes   []Outcome
}

// Counts tallies the report's outcomes.
func (r *Report) Counts() Counts {
	var c Counts
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusPassed:
			c.Passed++
		case StatusFailed:
			c.Failed++
		case StatusSkipped:
			c.Skipped++
		case StatusExpectedFailure:
			c.ExpectedFailures++
		case StatusUnexpectedPass:
			c.UnexpectedPasses++
		}
	}
	return c
}

// OK reports whether every outcome passed.
func (r *Report) OK() bool {
	for _, o := range r.Outcomes {
		if !o.Status.OK() {
			return false
		}
	}
	return true
}

// Failures returns the outcomes that fail the run.
func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Status.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Select resolves opts against reg. Cases not selected for execution are
// returned as skipped so they can still be reported.
func Select(reg *Registry, opts SelectOptions) (run, skipped []Case, err error) {
	if len(opts.Names) > 0 {
		seen := make(map[string]bool, len(opts.Names))
		for _, name := range opts.Names {
			c, ok := reg.Get(name)
			if !ok {
				return nil, nil, fmt.Errorf("unknown case %q", name)
			}
			if !seen[name] {
				seen[name] = true
				run = append(run, c)
			}
		}
		return run, nil, nil
	}

	if opts.IncludeSkipped {
		return reg.All(), nil, nil
	}
	return reg.Runnable(), reg.Skipped(), nil
}

// Run executes the selected cases. One case failing never stops or
// alters another; the error return is only for invalid selections.
func (s *Suite) Run(ctx context.Context, reg *Registry, opts SelectOptions) (*Report, error) {
	run, skipped, err := Select(reg, opts)
	if err != nil {
		return nil, err
	}

	parallel := s.Parallel
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}

	report := &Report{
		ID:         uuid.NewString(),
		StartedAt:  time.Now(),
		Executable: s.Harness.Executable(),
	}

	outcomes := make([]Outcome, len(run))
	var g errgroup.Group
	g.SetLimit(parallel)
	for i, c := range run {
		g.Go(func() error {
			outcomes[i] = s.Harness.Execute(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	for _, c := range skipped {
		outcomes = append(outcomes, Outcome{Case: c.Name, Mode: c.Mode, Status: StatusSkipped})
	}
	report.Outcomes = orderLike(reg, outcomes)
	report.Duration = time.Since(report.StartedAt)
	return report, nil
}

// orderLike sorts outcomes into registration order.
func orderLike(reg *Registry, outcomes []Outcome) []Outcome {
	ordered := make([]Outcome, 0, len(outcomes))
	byName := make(map[string]Outcome, len(outcomes))
	for _, o := range outcomes {
		byName[o.Case] = o
	}
	for _, c := range reg.All() {
		if o, ok := byName[c.Name]; ok {
			ordered = append(ordered, o)
		}
	}
	return ordered
}

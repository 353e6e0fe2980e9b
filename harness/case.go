package harness

import (
	"errors"
	"fmt"
	"slices"
)

// ModeKind selects how a case participates in a run.
type ModeKind int

const (
	ModeRun ModeKind = iota
	ModeSkip
	ModeExpectFailure
)

func (k ModeKind) String() string {
	switch k {
	case ModeRun:
		return "run"
	case ModeSkip:
		return "skip"
	case ModeExpectFailure:
		return "expect-failure"
	default:
		return fmt.Sprintf("mode(%d)", int(k))
	}
}

// Mode is a case's run-mode. Reason holds the tracked issue for Skip and
// the justification for ExpectFailure.
type Mode struct {
	Kind   ModeKind
	Reason string
}

// Run is the default mode: execute and require exit code zero.
func Run() Mode { return Mode{Kind: ModeRun} }

// Skip excludes a case from default execution, pending issue.
// The case stays discoverable and can be selected by name.
func Skip(issue string) Mode { return Mode{Kind: ModeSkip, Reason: issue} }

// ExpectFailure marks a case that exercises a currently broken path:
// it passes when the binary exits unsuccessfully.
func ExpectFailure(reason string) Mode { return Mode{Kind: ModeExpectFailure, Reason: reason} }

func (m Mode) String() string {
	if m.Reason == "" {
		return m.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", m.Kind, m.Reason)
}

// Case is one self-describing end-to-end test.
type Case struct {
	Name     string
	Fixtures []string // relative to the fixtures root
	Args     []string
	Mode     Mode
}

func (c Case) clone() Case {
	c.Fixtures = slices.Clone(c.Fixtures)
	c.Args = slices.Clone(c.Args)
	return c
}

// Registry holds uniquely named cases in registration order.
type Registry struct {
	cases []Case
	index map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds c. Names must be non-empty and unique; a Skip or
// ExpectFailure mode must carry a reason.
func (r *Registry) Register(c Case) error {
	if c.Name == "" {
		return errors.New("case name is required")
	}
	if _, exists := r.index[c.Name]; exists {
		return fmt.Errorf("case %q already registered", c.Name)
	}
	if c.Mode.Kind != ModeRun && c.Mode.Reason == "" {
		return fmt.Errorf("case %q: %s mode requires a reason", c.Name, c.Mode.Kind)
	}
	r.index[c.Name] = len(r.cases)
	r.cases = append(r.cases, c.clone())
	return nil
}

// MustRegister is Register for statically defined cases.
func (r *Registry) MustRegister(cases ...Case) *Registry {
	for _, c := range cases {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

// Len returns the number of registered cases.
func (r *Registry) Len() int {
	return len(r.cases)
}

// All returns every case in registration order.
func (r *Registry) All() []Case {
	return r.filter(func(Case) bool { return true })
}

// Get returns the case named name.
func (r *Registry) Get(name string) (Case, bool) {
	i, ok := r.index[name]
	if !ok {
		return Case{}, false
	}
	return r.cases[i].clone(), true
}

// Runnable returns the cases executed by default.
func (r *Registry) Runnable() []Case {
	return r.filter(func(c Case) bool { return c.Mode.Kind != ModeSkip })
}

// Skipped returns the cases excluded from default execution.
func (r *Registry) Skipped() []Case {
	return r.filter(func(c Case) bool { return c.Mode.Kind == ModeSkip })
}

func (r *Registry) filter(keep func(Case) bool) []Case {
	out := make([]Case, 0, len(r.cases))
	for _, c := range r.cases {
		if keep(c) {
			out = append(out, c.clone())
		}
	}
	return out
}

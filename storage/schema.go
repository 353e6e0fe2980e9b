package storage

import (
	"time"
)

// Run is one recorded suite run
type Run struct {
	ID               string    `gorm:"primaryKey"`
	StartedAt        time.Time `gorm:"not null;index:idx_started_at"`
	DurationMS       int64     `gorm:"not null;default:0"`
	BinaryPath       string    `gorm:"not null;default:''"`
	BinarySource     string    `gorm:"not null;default:''"`
	Passed           int       `gorm:"not null;default:0"`
	Failed           int       `gorm:"not null;default:0"`
	Skipped          int       `gorm:"not null;default:0"`
	ExpectedFailures int       `gorm:"not null;default:0"`
	UnexpectedPasses int       `gorm:"not null;default:0"`
	Success          bool      `gorm:"not null;default:false"`
	CreatedAt        time.Time
}

// Duration returns the wall-clock duration of the run
func (r Run) Duration() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}

// CaseResult is the outcome of one case within a run (many-to-1 with Run)
type CaseResult struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	RunID       string `gorm:"not null;index:idx_run_id"` // Foreign key to Run.ID
	Position    int    `gorm:"not null;default:0"`        // Registration order within the run
	Name        string `gorm:"not null"`
	Mode        string `gorm:"not null;default:'run'"`
	Reason      string `gorm:"not null;default:''"`
	Status      string `gorm:"not null"`
	ExitStatus  string `gorm:"not null;default:''"` // Empty when the process never ran
	CommandLine string `gorm:"not null;default:''"`
	Cwd         string `gorm:"not null;default:''"`
	Stdout      string `gorm:"not null;default:''"`
	Stderr      string `gorm:"not null;default:''"`
	Error       string `gorm:"not null;default:''"`
	Workspace   string `gorm:"not null;default:''"` // Set when the workspace was kept
	DurationMS  int64  `gorm:"not null;default:0"`
	CreatedAt   time.Time
}

// Duration returns how long the case took
func (c CaseResult) Duration() time.Duration {
	return time.Duration(c.DurationMS) * time.Millisecond
}

// RunDetail is a run together with its case results in registration order
type RunDetail struct {
	Run   Run
	Cases []CaseResult
}

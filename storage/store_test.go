package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tectest/harness"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleReport(startedAt time.Time) *harness.Report {
	failed := &harness.ProcessResult{
		Binary: "/build/tectonic",
		Args:   []string{"--format=plain.fmt.gz", "nonexistent.tex"},
		Dir:    "/tmp/tectonic_executable_test-1",
		Status: harness.ExitStatus{Exited: true, Code: 1},
		Stderr: []byte("error: failed to open input file\n"),
	}
	return &harness.Report{
		ID:         uuid.NewString(),
		StartedAt:  startedAt,
		Duration:   1500 * time.Millisecond,
		Executable: harness.Executable{Path: "/build/tectonic", Source: harness.SourceEnv},
		Outcomes: []harness.Outcome{
			{
				Case:     "help_flag",
				Mode:     harness.Run(),
				Status:   harness.StatusPassed,
				Result:   &harness.ProcessResult{Binary: "/build/tectonic", Args: []string{"-h"}, Status: harness.ExitStatus{Exited: true}, Stdout: []byte("Usage:\n")},
				Duration: 20 * time.Millisecond,
			},
			{
				Case:      "missing_input",
				Mode:      harness.Run(),
				Status:    harness.StatusFailed,
				Err:       harness.Verdict(failed),
				Result:    failed,
				Workspace: "/tmp/tectonic_executable_test-1",
				Duration:  30 * time.Millisecond,
			},
			{
				Case:   "relative_include",
				Mode:   harness.Skip("GitHub #31"),
				Status: harness.StatusSkipped,
			},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	report := sampleReport(time.Now())

	require.NoError(t, store.SaveReport(ctx, report))

	detail, err := store.GetRun(ctx, report.ID)
	require.NoError(t, err)

	assert.Equal(t, report.ID, detail.Run.ID)
	assert.Equal(t, "/build/tectonic", detail.Run.BinaryPath)
	assert.Equal(t, string(harness.SourceEnv), detail.Run.BinarySource)
	assert.Equal(t, 1, detail.Run.Passed)
	assert.Equal(t, 1, detail.Run.Failed)
	assert.Equal(t, 1, detail.Run.Skipped)
	assert.False(t, detail.Run.Success)
	assert.Equal(t, 1500*time.Millisecond, detail.Run.Duration())
	assert.WithinDuration(t, report.StartedAt, detail.Run.StartedAt, time.Second)

	require.Len(t, detail.Cases, 3)
	assert.Equal(t, "help_flag", detail.Cases[0].Name)
	assert.Equal(t, "exit status: 0", detail.Cases[0].ExitStatus)
	assert.Equal(t, "Usage:\n", detail.Cases[0].Stdout)

	missing := detail.Cases[1]
	assert.Equal(t, "failed", missing.Status)
	assert.Equal(t, "exit status: 1", missing.ExitStatus)
	assert.Equal(t, "/build/tectonic --format=plain.fmt.gz nonexistent.tex", missing.CommandLine)
	assert.Equal(t, "error: failed to open input file\n", missing.Stderr)
	assert.Contains(t, missing.Error, "command exited badly")
	assert.Equal(t, "/tmp/tectonic_executable_test-1", missing.Workspace)
	assert.Equal(t, 30*time.Millisecond, missing.Duration())

	skipped := detail.Cases[2]
	assert.Equal(t, "skip", skipped.Mode)
	assert.Equal(t, "GitHub #31", skipped.Reason)
	assert.Empty(t, skipped.ExitStatus)
}

func TestGetRunByPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	report := sampleReport(time.Now())
	require.NoError(t, store.SaveReport(ctx, report))

	detail, err := store.GetRun(ctx, report.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, report.ID, detail.Run.ID)
}

func TestGetRunAmbiguousPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	a := sampleReport(time.Now())
	a.ID = "abc00000-0000-0000-0000-000000000001"
	b := sampleReport(time.Now())
	b.ID = "abc00000-0000-0000-0000-000000000002"
	require.NoError(t, store.SaveReport(ctx, a))
	require.NoError(t, store.SaveReport(ctx, b))

	_, err := store.GetRun(ctx, "abc")
	assert.ErrorContains(t, err, "ambiguous")

	detail, err := store.GetRun(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, detail.Run.ID)
}

func TestGetRunNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRun(context.Background(), "deadbeef")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	_, err = store.GetRun(context.Background(), "")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRunsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 0; i < 3; i++ {
		r := sampleReport(base.Add(time.Duration(i) * time.Minute))
		ids = append(ids, r.ID)
		require.NoError(t, store.SaveReport(ctx, r))
	}

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{runs[0].ID, runs[1].ID, runs[2].ID})

	runs, err = store.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestSaveReportWithoutOutcomes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	report := &harness.Report{ID: uuid.NewString(), StartedAt: time.Now()}

	require.NoError(t, store.SaveReport(ctx, report))

	detail, err := store.GetRun(ctx, report.ID)
	require.NoError(t, err)
	assert.True(t, detail.Run.Success)
	assert.Empty(t, detail.Cases)
}

func TestSaveReportDuplicateID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	report := sampleReport(time.Now())

	require.NoError(t, store.SaveReport(ctx, report))
	assert.Error(t, store.SaveReport(ctx, report))
}

func TestPruneRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	var newest string
	for i := 0; i < 4; i++ {
		r := sampleReport(base.Add(time.Duration(i) * time.Minute))
		newest = r.ID
		require.NoError(t, store.SaveReport(ctx, r))
	}

	removed, err := store.PruneRuns(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, removed)

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, newest, runs[0].ID)

	var orphans int64
	require.NoError(t, store.db.Model(&CaseResult{}).Where("run_id <> ?", newest).Count(&orphans).Error)
	assert.Zero(t, orphans)

	removed, err = store.PruneRuns(ctx, 5)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = store.PruneRuns(ctx, -1)
	assert.Error(t, err)
}

func TestNewStoreReopensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()
	report := sampleReport(time.Now())

	first, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, first.SaveReport(ctx, report))
	require.NoError(t, first.Close())

	second, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	detail, err := second.GetRun(ctx, report.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Cases, 3)
}

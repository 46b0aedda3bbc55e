package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddJobs_GeneratesIDsAndTimestamps(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	jobs, err := repos.Jobs.AddJobs(ctx,
		&core.Job{DocumentID: core.ID(1)},
		&core.Job{DocumentID: core.ID(2)},
	)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.NotZero(t, jobs[0].Id)
	assert.NotZero(t, jobs[1].Id)
	assert.NotEqual(t, jobs[0].Id, jobs[1].Id)
	assert.Equal(t, core.JobPending, jobs[0].Status)
	assert.False(t, jobs[0].CreatedAt.IsZero())
	assert.False(t, jobs[0].UpdatedAt.IsZero())

	got, err := repos.Jobs.GetJob(ctx, jobs[0].Id)
	require.NoError(t, err)
	assert.Equal(t, jobs[0].Id, got.Id)
	assert.Equal(t, core.ID(1), got.DocumentID)
}

func TestAddJobs_PreservesPresetTimestamps(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	past := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Microsecond)
	jobs, err := repos.Jobs.AddJobs(context.Background(), &core.Job{
		DocumentID: core.ID(1),
		Status:     core.JobRunning,
		CreatedAt:  past,
		UpdatedAt:  past,
	})
	require.NoError(t, err)

	got, err := repos.Jobs.GetJob(context.Background(), jobs[0].Id)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(past))
	assert.Equal(t, core.JobRunning, got.Status)
}

func TestGetJob_NotFound(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	_, err = repos.Jobs.GetJob(context.Background(), core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateProgress_AdvancesUpdatedAt(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	past := time.Now().UTC().Add(-time.Hour)
	jobs, err := repos.Jobs.AddJobs(ctx, &core.Job{
		DocumentID: core.ID(1),
		Status:     core.JobRunning,
		CreatedAt:  past,
		UpdatedAt:  past,
	})
	require.NoError(t, err)

	err = repos.Jobs.UpdateProgress(ctx, jobs[0].Id, 40, "synthesizing sections")
	require.NoError(t, err)

	got, err := repos.Jobs.GetJob(ctx, jobs[0].Id)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Progress)
	assert.Equal(t, "synthesizing sections", got.Message)
	assert.True(t, got.UpdatedAt.After(past))
}

func TestUpdateProgress_Invalid(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	jobs, err := repos.Jobs.AddJobs(ctx, &core.Job{DocumentID: core.ID(1)})
	require.NoError(t, err)

	err = repos.Jobs.UpdateProgress(ctx, jobs[0].Id, 101, "overflow")
	assert.ErrorIs(t, err, core.ErrInvalidProgress)

	err = repos.Jobs.UpdateProgress(ctx, core.ID(99999), 10, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateStatus_TerminalSetsCompletedAt(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	jobs, err := repos.Jobs.AddJobs(ctx, &core.Job{DocumentID: core.ID(1)})
	require.NoError(t, err)

	err = repos.Jobs.UpdateStatus(ctx, jobs[0].Id, core.JobRunning, "")
	require.NoError(t, err)

	got, err := repos.Jobs.GetJob(ctx, jobs[0].Id)
	require.NoError(t, err)
	assert.Equal(t, core.JobRunning, got.Status)
	assert.True(t, got.CompletedAt.IsZero())

	err = repos.Jobs.UpdateStatus(ctx, jobs[0].Id, core.JobFailed, "embedding provider unreachable")
	require.NoError(t, err)

	got, err = repos.Jobs.GetJob(ctx, jobs[0].Id)
	require.NoError(t, err)
	assert.Equal(t, core.JobFailed, got.Status)
	assert.Equal(t, "embedding provider unreachable", got.ErrorMessage)
	assert.False(t, got.CompletedAt.IsZero())
}

func TestFindStale(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	cutoff := now.Add(-time.Hour)

	_, err = repos.Jobs.AddJobs(ctx,
		// Stale: running, last touched 61 minutes ago
		&core.Job{DocumentID: core.ID(1), Status: core.JobRunning, CreatedAt: now.Add(-2 * time.Hour), UpdatedAt: now.Add(-61 * time.Minute)},
		// Stale: pending, last touched exactly at the cutoff
		&core.Job{DocumentID: core.ID(2), Status: core.JobPending, CreatedAt: cutoff, UpdatedAt: cutoff},
		// Not stale: running, touched 59 minutes ago
		&core.Job{DocumentID: core.ID(3), Status: core.JobRunning, CreatedAt: now.Add(-2 * time.Hour), UpdatedAt: now.Add(-59 * time.Minute)},
		// Not stale: completed long ago, terminal states are exempt
		&core.Job{DocumentID: core.ID(4), Status: core.JobCompleted, CreatedAt: now.Add(-3 * time.Hour), UpdatedAt: now.Add(-3 * time.Hour)},
	)
	require.NoError(t, err)

	stale, err := repos.Jobs.FindStale(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, stale, 2)

	docs := []core.ID{stale[0].DocumentID, stale[1].DocumentID}
	assert.Contains(t, docs, core.ID(1))
	assert.Contains(t, docs, core.ID(2))
}

func TestFailStale_Idempotent(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	cutoff := now.Add(-time.Hour)

	jobs, err := repos.Jobs.AddJobs(ctx,
		&core.Job{DocumentID: core.ID(1), Status: core.JobRunning, CreatedAt: now.Add(-2 * time.Hour), UpdatedAt: now.Add(-90 * time.Minute)},
		&core.Job{DocumentID: core.ID(2), Status: core.JobRunning, CreatedAt: now, UpdatedAt: now},
	)
	require.NoError(t, err)

	failed, err := repos.Jobs.FailStale(ctx, cutoff, "Processing timeout - exceeded 60 minutes")
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, jobs[0].Id, failed[0])

	got, err := repos.Jobs.GetJob(ctx, jobs[0].Id)
	require.NoError(t, err)
	assert.Equal(t, core.JobFailed, got.Status)
	assert.Equal(t, "Processing timeout - exceeded 60 minutes", got.ErrorMessage)
	assert.False(t, got.CompletedAt.IsZero())

	// The healthy job is untouched
	got, err = repos.Jobs.GetJob(ctx, jobs[1].Id)
	require.NoError(t, err)
	assert.Equal(t, core.JobRunning, got.Status)

	// A second sweep finds nothing: the failed job is now terminal
	failed, err = repos.Jobs.FailStale(ctx, cutoff, "Processing timeout - exceeded 60 minutes")
	require.NoError(t, err)
	assert.Empty(t, failed)
}

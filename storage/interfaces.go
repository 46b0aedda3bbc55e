package storage

import (
	"context"
	"time"

	"github.com/poiesic/summarit/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// EmbeddingRepository provides operations for persisted chunk embeddings.
// All operations are scoped by document ID; isolation between documents
// comes from key prefixes rather than locking.
type EmbeddingRepository interface {
	Repository
	// AddEmbeddings persists one or more embedding records in a single
	// transaction. Existing records for the same (document, chunk) pair
	// are overwritten.
	AddEmbeddings(ctx context.Context, records ...*core.EmbeddingRecord) error

	// FindSimilar scans all embeddings of the given document and returns
	// hits with cosine similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity descending; ties are broken by
	// chunk index ascending so output is deterministic.
	FindSimilar(ctx context.Context, documentID core.ID, vector []float32, minSimilarity float32, limit int) ([]core.SearchHit, error)

	// GetEmbeddings retrieves all embedding records for a document,
	// ordered by chunk index.
	GetEmbeddings(ctx context.Context, documentID core.ID) ([]*core.EmbeddingRecord, error)

	// CountEmbeddings returns the number of embeddings stored for a document.
	CountEmbeddings(ctx context.Context, documentID core.ID) (int, error)

	// DeleteEmbeddings removes all embeddings for a document.
	// Returns the number of records deleted.
	DeleteEmbeddings(ctx context.Context, documentID core.ID) (int, error)
}

// JobRepository provides operations for job tracking records.
//
// UpdateProgress and UpdateStatus advance the job's UpdatedAt timestamp;
// the staleness queries rely on that invariant.
type JobRepository interface {
	Repository
	// AddJobs adds one or more jobs to storage.
	// For jobs with ID=0, generates new IDs from sequence.
	// Sets CreatedAt/UpdatedAt timestamps if not already set.
	// Returns the jobs with generated IDs and timestamps populated.
	AddJobs(ctx context.Context, jobs ...*core.Job) ([]*core.Job, error)

	// GetJob retrieves a single job by ID.
	// Returns ErrNotFound if the job doesn't exist.
	GetJob(ctx context.Context, id core.ID) (*core.Job, error)

	// UpdateProgress sets the job's progress percentage and message and
	// advances UpdatedAt. Returns ErrNotFound if the job doesn't exist.
	UpdateProgress(ctx context.Context, id core.ID, progress int, message string) error

	// UpdateStatus sets the job's status (and error message, for failures)
	// and advances UpdatedAt. Terminal statuses also set CompletedAt.
	// Returns ErrNotFound if the job doesn't exist.
	UpdateStatus(ctx context.Context, id core.ID, status core.JobStatus, errorMessage string) error

	// FindStale returns jobs whose status is still active (pending or
	// running) and whose UpdatedAt is at or before the cutoff.
	// This is a pure read; it never mutates job state.
	FindStale(ctx context.Context, cutoff time.Time) ([]*core.Job, error)

	// FailStale marks every stale job (per FindStale semantics) as failed
	// with the given error message, setting CompletedAt, in one filtered
	// bulk update. Returns the IDs of the jobs that were failed.
	// Already-terminal jobs are never touched, so repeated sweeps are
	// idempotent.
	FailStale(ctx context.Context, cutoff time.Time, errorMessage string) ([]core.ID, error)
}

// ResultRepository provides operations for pipeline result records.
type ResultRepository interface {
	Repository
	// PutResult creates or replaces a result record and advances UpdatedAt.
	// Also maintains the job-to-result index when JobID is set.
	PutResult(ctx context.Context, result *core.PipelineResult) error

	// GetResult retrieves a result by ID.
	// Returns ErrNotFound if the result doesn't exist.
	GetResult(ctx context.Context, id core.ID) (*core.PipelineResult, error)

	// GetResultByJob retrieves the result linked to a job.
	// Returns ErrNotFound if no result is linked to the job.
	GetResultByJob(ctx context.Context, jobID core.ID) (*core.PipelineResult, error)

	// ReplaceSection swaps one synthesized section (matched by title) into
	// an existing result. Returns ErrNotFound if the result or the section
	// doesn't exist.
	ReplaceSection(ctx context.Context, id core.ID, section core.SynthesizedSection) error

	// FailByJob marks results linked to the given jobs as failed with the
	// given error message. Results already in a terminal state are left
	// untouched. Returns the number of results transitioned.
	FailByJob(ctx context.Context, jobIDs []core.ID, errorMessage string) (int, error)
}

package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/storage"
)

// JobRepository implements storage.JobRepository for BadgerDB.
type JobRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.JobRepository = (*JobRepository)(nil)

// NewJobRepository creates a new JobRepository.
func NewJobRepository(backend *Backend) (*JobRepository, error) {
	idSeq, err := backend.GetSequence(jobRecordIDSeq)
	if err != nil {
		return nil, err
	}

	return &JobRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *JobRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *JobRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddJobs adds one or more jobs to storage.
func (r *JobRepository) AddJobs(ctx context.Context, jobs ...*core.Job) ([]*core.Job, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, job := range jobs {
			if job.Id == 0 {
				nextID, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				// BadgerDB sequences can return 0 on first call, so we skip it
				if nextID == 0 {
					nextID, err = r.idSeq.Next()
					if err != nil {
						return err
					}
				}
				job.Id = core.ID(nextID)
			}

			if job.Status == 0 {
				job.Status = core.JobPending
			}
			if job.CreatedAt.IsZero() {
				job.CreatedAt = time.Now().UTC()
			}
			if job.UpdatedAt.IsZero() {
				job.UpdatedAt = job.CreatedAt
			}

			key := makeJobKey(job.Id)
			value := storage.MarshalJob(job)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return jobs, err
}

// GetJob retrieves a single job by ID.
func (r *JobRepository) GetJob(ctx context.Context, id core.ID) (*core.Job, error) {
	var result *core.Job
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readJob(tx, makeJobKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// UpdateProgress sets the job's progress and message and advances UpdatedAt.
func (r *JobRepository) UpdateProgress(ctx context.Context, id core.ID, progress int, message string) error {
	if err := core.ValidateProgress(progress); err != nil {
		return err
	}
	return r.mutateJob(id, func(job *core.Job) {
		job.Progress = progress
		job.Message = message
	})
}

// UpdateStatus sets the job's status and advances UpdatedAt.
// Terminal statuses also set CompletedAt.
func (r *JobRepository) UpdateStatus(ctx context.Context, id core.ID, status core.JobStatus, errorMessage string) error {
	if err := core.ValidateJobStatus(status); err != nil {
		return err
	}
	return r.mutateJob(id, func(job *core.Job) {
		job.Status = status
		job.ErrorMessage = errorMessage
		if !status.Active() {
			job.CompletedAt = time.Now().UTC()
		}
	})
}

// FindStale returns active jobs whose UpdatedAt is at or before the cutoff.
func (r *JobRepository) FindStale(ctx context.Context, cutoff time.Time) ([]*core.Job, error) {
	var results []*core.Job
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.forEachJob(tx, func(job *core.Job) error {
			if job.Status.Active() && !job.UpdatedAt.After(cutoff) {
				results = append(results, job)
			}
			return nil
		})
	}, false)
	return results, err
}

// FailStale marks every stale job as failed in one write transaction.
// Jobs already in a terminal state are never touched, so repeated calls
// with the same cutoff find nothing left to fail.
func (r *JobRepository) FailStale(ctx context.Context, cutoff time.Time, errorMessage string) ([]core.ID, error) {
	var failed []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		err := r.forEachJob(tx, func(job *core.Job) error {
			if !job.Status.Active() || job.UpdatedAt.After(cutoff) {
				return nil
			}
			job.Status = core.JobFailed
			job.ErrorMessage = errorMessage
			job.UpdatedAt = now
			job.CompletedAt = now
			if err := tx.Set(makeJobKey(job.Id), storage.MarshalJob(job)); err != nil {
				return err
			}
			failed = append(failed, job.Id)
			return nil
		})
		if err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return failed, nil
}

// mutateJob reads a job, applies fn, advances UpdatedAt, and writes it back.
func (r *JobRepository) mutateJob(id core.ID, fn func(job *core.Job)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeJobKey(id)
		job, err := r.readJob(tx, key)
		if err != nil {
			return err
		}
		if job == nil {
			return storage.ErrNotFound
		}

		fn(job)
		job.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalJob(job)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// forEachJob walks every job record in the database.
func (r *JobRepository) forEachJob(tx *badger.Txn, fn func(job *core.Job) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(jobRecordPrefix + ":")
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		var job *core.Job
		err := iter.Item().Value(func(val []byte) error {
			var err error
			job, err = storage.UnmarshalJob(val)
			return err
		})
		if err != nil {
			return err
		}
		if job == nil {
			continue
		}
		if err := fn(job); err != nil {
			return err
		}
	}
	return nil
}

// readJob reads a job by key, returning nil if it doesn't exist.
func (r *JobRepository) readJob(tx *badger.Txn, key []byte) (*core.Job, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var job *core.Job
	err = item.Value(func(val []byte) error {
		var err error
		job, err = storage.UnmarshalJob(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

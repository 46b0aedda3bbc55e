package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/storage"
)

// ResultRepository implements storage.ResultRepository for BadgerDB.
type ResultRepository struct {
	backend *Backend
}

var _ storage.ResultRepository = (*ResultRepository)(nil)

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(backend *Backend) (*ResultRepository, error) {
	return &ResultRepository{backend: backend}, nil
}

// Close is a no-op; the repository holds no resources beyond the backend.
func (r *ResultRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ResultRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutResult creates or replaces a result record.
func (r *ResultRepository) PutResult(ctx context.Context, result *core.PipelineResult) error {
	if result.Id == 0 {
		return storage.ErrInvalidRecord
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		result.UpdatedAt = time.Now().UTC()

		key := makeResultKey(result.Id)
		if err := tx.Set(key, storage.MarshalPipelineResult(result)); err != nil {
			return err
		}

		// Maintain the job-to-result index
		if result.JobID != 0 {
			jobKey := makeResultJobKey(result.JobID)
			if err := tx.Set(jobKey, storage.MarshalID(result.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetResult retrieves a result by ID.
func (r *ResultRepository) GetResult(ctx context.Context, id core.ID) (*core.PipelineResult, error) {
	var result *core.PipelineResult
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readResult(tx, makeResultKey(id))
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

// GetResultByJob retrieves the result linked to a job via the index.
func (r *ResultRepository) GetResultByJob(ctx context.Context, jobID core.ID) (*core.PipelineResult, error) {
	var result *core.PipelineResult
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeResultJobKey(jobID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var resultID core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			resultID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = r.readResult(tx, makeResultKey(resultID))
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

// ReplaceSection swaps one synthesized section into an existing result,
// matched by title.
func (r *ResultRepository) ReplaceSection(ctx context.Context, id core.ID, section core.SynthesizedSection) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeResultKey(id)
		result, err := r.readResult(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}

		replaced := false
		for i := range result.Sections {
			if result.Sections[i].Title == section.Title {
				result.Sections[i] = section
				replaced = true
				break
			}
		}
		if !replaced {
			return storage.ErrNotFound
		}

		result.UpdatedAt = time.Now().UTC()
		if err := tx.Set(key, storage.MarshalPipelineResult(result)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// FailByJob marks the results linked to the given jobs as failed.
// Terminal results are left untouched; missing results are skipped.
func (r *ResultRepository) FailByJob(ctx context.Context, jobIDs []core.ID, errorMessage string) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, jobID := range jobIDs {
			item, err := tx.Get(makeResultJobKey(jobID))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}

			var resultID core.ID
			if err := item.Value(func(val []byte) error {
				var err error
				resultID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			key := makeResultKey(resultID)
			result, err := r.readResult(tx, key)
			if err != nil {
				return err
			}
			if result == nil || result.Status != core.ResultProcessing {
				continue
			}

			result.Status = core.ResultFailed
			result.ErrorMessage = errorMessage
			result.CompletedAt = now
			result.UpdatedAt = now
			if err := tx.Set(key, storage.MarshalPipelineResult(result)); err != nil {
				return err
			}
			count++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// readResult reads a result by key, returning nil if it doesn't exist.
func (r *ResultRepository) readResult(tx *badger.Txn, key []byte) (*core.PipelineResult, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var result *core.PipelineResult
	err = item.Value(func(val []byte) error {
		var err error
		result, err = storage.UnmarshalPipelineResult(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

package badger

import "github.com/poiesic/summarit/storage"

// Repositories bundles the three repositories sharing one backend.
type Repositories struct {
	Embeddings storage.EmbeddingRepository
	Jobs       storage.JobRepository
	Results    storage.ResultRepository
	backend    *Backend
}

// NewRepositories opens a database at path and creates all repositories.
// Caller must call Close when done.
func NewRepositories(path string) (*Repositories, error) {
	return newRepositories(path, false)
}

func newRepositories(path string, inMemory bool) (*Repositories, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}

	embeddings, err := NewEmbeddingRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	jobs, err := NewJobRepository(backend)
	if err != nil {
		embeddings.Close()
		backend.Close()
		return nil, err
	}

	results, err := NewResultRepository(backend)
	if err != nil {
		jobs.Close()
		embeddings.Close()
		backend.Close()
		return nil, err
	}

	return &Repositories{
		Embeddings: embeddings,
		Jobs:       jobs,
		Results:    results,
		backend:    backend,
	}, nil
}

// Backend exposes the shared backend, mainly for tests.
func (r *Repositories) Backend() *Backend {
	return r.backend
}

// Close closes all repositories and the underlying backend.
func (r *Repositories) Close() error {
	r.Jobs.Close()
	r.Embeddings.Close()
	r.Results.Close()
	return r.backend.Close()
}

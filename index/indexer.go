package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/summarit/ai"
	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/storage"
)

const (
	// defaultBatchSize bounds how many chunk texts go to the embedding
	// provider in one request.
	defaultBatchSize = 100
)

// Indexer embeds document chunks and persists the resulting records.
type Indexer struct {
	embedder  ai.Embedder
	store     storage.EmbeddingRepository
	batchSize int
	logger    *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithBatchSize overrides the embedding batch size.
func WithBatchSize(size int) Option {
	return func(ix *Indexer) error {
		if size <= 0 {
			return fmt.Errorf("batch size must be positive, got %d", size)
		}
		ix.batchSize = size
		return nil
	}
}

// NewIndexer creates an Indexer backed by the given embedder and store.
func NewIndexer(embedder ai.Embedder, store storage.EmbeddingRepository, opts ...Option) (*Indexer, error) {
	ix := &Indexer{
		embedder:  embedder,
		store:     store,
		batchSize: defaultBatchSize,
		logger:    slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

// IndexChunks embeds all chunks in batches and stores one record per chunk.
// Batches preserve chunk order. Returns the number of records stored.
func (ix *Indexer) IndexChunks(ctx context.Context, documentID core.ID, chunks []core.Chunk, strategy core.ProcessingStrategy) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	ix.logger.Info("indexing chunks", "document_id", documentID, "chunks", len(chunks), "batch_size", ix.batchSize)

	stored := 0
	for start := 0; start < len(chunks); start += ix.batchSize {
		end := min(start+ix.batchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}

		vectors, err := ix.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return stored, fmt.Errorf("embed batch at chunk %d: %w", start, err)
		}
		if len(vectors) != len(batch) {
			return stored, fmt.Errorf("embedding count mismatch: got %d vectors for %d chunks", len(vectors), len(batch))
		}

		records := make([]*core.EmbeddingRecord, len(batch))
		for i, chunk := range batch {
			records[i] = &core.EmbeddingRecord{
				DocumentID:     documentID,
				ChunkIndex:     chunk.Index,
				ChunkText:      chunk.Text,
				Vector:         vectors[i],
				PageNumber:     chunk.PageNumber,
				SectionHeading: chunk.SectionHeading,
				WordCount:      chunk.WordCount,
				StartOffset:    chunk.StartOffset,
				EndOffset:      chunk.EndOffset,
				Model:          strategy.EmbeddingModel,
			}
		}

		if err := ix.store.AddEmbeddings(ctx, records...); err != nil {
			return stored, fmt.Errorf("store batch at chunk %d: %w", start, err)
		}
		stored += len(records)
	}

	ix.logger.Info("indexing complete", "document_id", documentID, "stored", stored)
	return stored, nil
}

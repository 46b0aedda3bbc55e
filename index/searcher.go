package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/summarit/ai"
	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/storage"
)

const (
	// DefaultTopK is the result cap applied when a query doesn't set one.
	DefaultTopK = 20
	// DefaultMinSimilarity filters out hits with weak cosine similarity.
	DefaultMinSimilarity = 0.3
)

// ErrEmptyQuery is returned when a query has neither text nor a vector.
var ErrEmptyQuery = errors.New("query needs text or a vector")

// Query describes one similarity search over a document's chunks.
// Either Text or Vector must be set; when both are present the vector wins
// and no embedding call is made.
//
// MinSimilarity is a pointer so an explicit zero (scan everything) is
// distinguishable from an unset threshold, which falls back to the default.
type Query struct {
	DocumentID    core.ID
	Text          string
	Vector        []float32
	TopK          int
	MinSimilarity *float32
}

// Searcher runs similarity queries against stored embeddings.
type Searcher struct {
	embedder ai.Embedder
	store    storage.EmbeddingRepository
}

// NewSearcher creates a Searcher.
func NewSearcher(embedder ai.Embedder, store storage.EmbeddingRepository) *Searcher {
	return &Searcher{embedder: embedder, store: store}
}

// Search embeds the query text if needed and returns the top matching
// chunks, ordered by similarity descending.
func (s *Searcher) Search(ctx context.Context, query Query) ([]core.SearchHit, error) {
	topK := query.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	minSimilarity := float32(DefaultMinSimilarity)
	if query.MinSimilarity != nil {
		minSimilarity = *query.MinSimilarity
	}

	vector := query.Vector
	if len(vector) == 0 {
		if query.Text == "" {
			return nil, ErrEmptyQuery
		}
		var err error
		vector, err = s.embedder.EmbedText(ctx, query.Text)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
	}

	return s.store.FindSimilar(ctx, query.DocumentID, vector, minSimilarity, topK)
}

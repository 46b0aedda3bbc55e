package index

import (
	"context"
	"testing"

	"github.com/poiesic/summarit/ai/mock"
	"github.com/poiesic/summarit/core"
	"github.com/poiesic/summarit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEmbeddings(t *testing.T, repos *badger.Repositories, docID core.ID) {
	t.Helper()
	records := []*core.EmbeddingRecord{
		{DocumentID: docID, ChunkIndex: 0, ChunkText: "revenue and growth", PageNumber: 1, Vector: []float32{1, 0, 0}},
		{DocumentID: docID, ChunkIndex: 1, ChunkText: "personnel changes", PageNumber: 3, Vector: []float32{0.7, 0.7, 0}},
		{DocumentID: docID, ChunkIndex: 2, ChunkText: "office relocation", PageNumber: 5, Vector: []float32{0, 0, 1}},
	}
	require.NoError(t, repos.Embeddings.AddEmbeddings(context.Background(), records...))
}

func TestSearch_WithVector(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	docID := core.ID(5)
	seedEmbeddings(t, repos, docID)

	embedder := mock.NewMockEmbedder()
	searcher := NewSearcher(embedder, repos.Embeddings)

	hits, err := searcher.Search(context.Background(), Query{
		DocumentID: docID,
		Vector:     []float32{1, 0, 0},
	})
	require.NoError(t, err)
	require.Len(t, hits, 2) // the orthogonal chunk falls below 0.3

	assert.Equal(t, "revenue and growth", hits[0].ChunkText)
	assert.InDelta(t, 1.0, hits[0].Similarity, 0.001)
	assert.Equal(t, 1, hits[0].PageNumber)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)

	// No embedding call when the vector is supplied
	assert.Zero(t, embedder.CallCount())
}

func TestSearch_EmbedsQueryText(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	docID := core.ID(6)
	seedEmbeddings(t, repos, docID)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		assert.Equal(t, "financial performance", text)
		return []float32{1, 0, 0}, nil
	}
	searcher := NewSearcher(embedder, repos.Embeddings)

	hits, err := searcher.Search(context.Background(), Query{
		DocumentID: docID,
		Text:       "financial performance",
	})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "revenue and growth", hits[0].ChunkText)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestSearch_TopKLimit(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	docID := core.ID(7)
	seedEmbeddings(t, repos, docID)

	searcher := NewSearcher(mock.NewMockEmbedder(), repos.Embeddings)

	hits, err := searcher.Search(context.Background(), Query{
		DocumentID: docID,
		Vector:     []float32{1, 0, 0},
		TopK:       1,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 0, hits[0].ChunkIndex)
}

func TestSearch_MinSimilarityOverride(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	docID := core.ID(8)
	seedEmbeddings(t, repos, docID)

	searcher := NewSearcher(mock.NewMockEmbedder(), repos.Embeddings)

	// High threshold keeps only the exact match
	strict := float32(0.95)
	hits, err := searcher.Search(context.Background(), Query{
		DocumentID:    docID,
		Vector:        []float32{1, 0, 0},
		MinSimilarity: &strict,
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "revenue and growth", hits[0].ChunkText)

	// An explicit zero disables the similarity filter entirely; even the
	// orthogonal chunk comes back.
	unfiltered := float32(0)
	hits, err = searcher.Search(context.Background(), Query{
		DocumentID:    docID,
		Vector:        []float32{1, 0, 0},
		MinSimilarity: &unfiltered,
	})
	require.NoError(t, err)
	require.Len(t, hits, 3)
}

func TestSearch_EmptyQuery(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	searcher := NewSearcher(mock.NewMockEmbedder(), repos.Embeddings)

	_, err = searcher.Search(context.Background(), Query{DocumentID: core.ID(1)})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

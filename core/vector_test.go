package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity_Identity(t *testing.T) {
	v := []float32{0.3, 0.5, 0.2, 0.9}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6, "similarity of a vector with itself should be 1")
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float32{0.1, 0.7, 0.4}
	b := []float32{0.9, 0.2, 0.5}
	assert.Equal(t, CosineSimilarity(a, b), CosineSimilarity(b, a))
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-6)
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	a := []float32{0, 0, 0}
	b := []float32{0.5, 0.5, 0.5}
	assert.Equal(t, float32(0), CosineSimilarity(a, b), "zero vector should yield 0, not NaN")
	assert.Equal(t, float32(0), CosineSimilarity(b, a))
}

func TestCosineSimilarity_NegativeFlooredAtZero(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{-1, 0}
	assert.Equal(t, float32(0), CosineSimilarity(a, b), "opposite vectors rank as 0, not -1")
}

func TestCosineSimilarity_Bounded(t *testing.T) {
	vectors := [][]float32{
		{0.1, 0.2, 0.3},
		{-0.5, 0.4, 0.9},
		{100, 200, 300},
		{1e-8, 1e-8, 1e-8},
	}
	for _, a := range vectors {
		for _, b := range vectors {
			sim := CosineSimilarity(a, b)
			assert.GreaterOrEqual(t, sim, float32(0))
			assert.LessOrEqual(t, sim, float32(1))
		}
	}
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	require.Len(t, v, 2)
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)
}

func TestNormalizeVector_Zero(t *testing.T) {
	v := NormalizeVector([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, v)
}

func TestNormalizeVector_Empty(t *testing.T) {
	assert.Empty(t, NormalizeVector(nil))
}

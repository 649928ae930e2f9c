package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{2, 4, 6}
	c := []float32{-1, 0, 1}

	t.Run("identical direction", func(t *testing.T) {
		score, err := CosineSimilarity(a, b)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, score, 1e-6)
	})

	t.Run("self similarity is one", func(t *testing.T) {
		score, err := CosineSimilarity(a, a)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, score, 1e-6)
	})

	t.Run("symmetric", func(t *testing.T) {
		ab, err := CosineSimilarity(a, c)
		require.NoError(t, err)
		ba, err := CosineSimilarity(c, a)
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
	})

	t.Run("opposite direction", func(t *testing.T) {
		neg := []float32{-1, -2, -3}
		score, err := CosineSimilarity(a, neg)
		require.NoError(t, err)
		assert.InDelta(t, -1.0, score, 1e-6)
	})

	t.Run("zero vector scores zero", func(t *testing.T) {
		score, err := CosineSimilarity(a, []float32{0, 0, 0})
		require.NoError(t, err)
		assert.Equal(t, float32(0), score)
	})

	t.Run("mismatched lengths error", func(t *testing.T) {
		_, err := CosineSimilarity(a, []float32{1, 2})
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})
}

package embedder_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artvector/artvector-go/pkg/embedder"
)

func TestNormalize(t *testing.T) {
	vec := []float64{3, 4}
	require.NoError(t, embedder.Normalize(vec))

	assert.InDelta(t, 0.6, vec[0], 1e-12)
	assert.InDelta(t, 0.8, vec[1], 1e-12)
}

func TestNormalize_ZeroVector(t *testing.T) {
	vec := []float64{0, 0, 0}
	err := embedder.Normalize(vec)

	assert.ErrorIs(t, err, embedder.ErrZeroVector)
	assert.Equal(t, []float64{0, 0, 0}, vec)
}

func TestNormalize_NonFinite(t *testing.T) {
	assert.ErrorIs(t, embedder.Normalize([]float64{math.Inf(1), 1}), embedder.ErrZeroVector)
	assert.ErrorIs(t, embedder.Normalize([]float64{math.NaN()}), embedder.ErrZeroVector)
}

func TestDot(t *testing.T) {
	a := []float64{1, 0, 0}
	b := []float64{0, 1, 0}

	assert.Equal(t, 0.0, embedder.Dot(a, b))
	assert.Equal(t, 1.0, embedder.Dot(a, a))

	// Opposite unit vectors score -1.
	c := []float64{-1, 0, 0}
	assert.Equal(t, -1.0, embedder.Dot(a, c))
}

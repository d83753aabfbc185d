package hash_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artvector/artvector-go/pkg/embedder"
	"github.com/artvector/artvector-go/pkg/embedder/hash"
)

func newHashEmbedder(t *testing.T, dims int) *hash.Client {
	t.Helper()
	client, err := hash.NewClient(&hash.Config{Dimensions: dims})
	require.NoError(t, err)
	return client
}

func TestHashEmbedder_Defaults(t *testing.T) {
	client, err := hash.NewClient(&hash.Config{})
	require.NoError(t, err)

	assert.Equal(t, hash.DefaultDimensions, client.Dimensions())
	assert.Equal(t, "token-hash-v1", client.Name())
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	client := newHashEmbedder(t, 64)
	ctx := context.Background()

	first, err := client.Embed(ctx, "Water Lilies by Claude Monet")
	require.NoError(t, err)

	second, err := client.Embed(ctx, "Water Lilies by Claude Monet")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHashEmbedder_UnitNorm(t *testing.T) {
	client := newHashEmbedder(t, 64)

	vec, err := client.Embed(context.Background(), "Starry Night | Vincent van Gogh | Oil on canvas")
	require.NoError(t, err)
	require.Len(t, vec, 64)

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestHashEmbedder_EmptyText(t *testing.T) {
	client := newHashEmbedder(t, 64)
	ctx := context.Background()

	_, err := client.Embed(ctx, "")
	assert.ErrorIs(t, err, embedder.ErrZeroVector)

	// Punctuation-only text has no tokens either.
	_, err = client.Embed(ctx, " ... !!! ")
	assert.ErrorIs(t, err, embedder.ErrZeroVector)
}

func TestHashEmbedder_EmbedBatch(t *testing.T) {
	client := newHashEmbedder(t, 64)
	ctx := context.Background()

	texts := []string{"water garden", "stormy sky", "water garden"}
	vectors, err := client.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	assert.Equal(t, vectors[0], vectors[2])
	assert.NotEqual(t, vectors[0], vectors[1])
}

func TestHashEmbedder_EmbedBatch_FailsOnEmptyItem(t *testing.T) {
	client := newHashEmbedder(t, 64)

	_, err := client.EmbedBatch(context.Background(), []string{"fine", ""})
	assert.ErrorIs(t, err, embedder.ErrZeroVector)
}

func TestHashEmbedder_OverlapScoresHigher(t *testing.T) {
	client := newHashEmbedder(t, 128)
	ctx := context.Background()

	query, err := client.Embed(ctx, "impressionist water garden painting")
	require.NoError(t, err)
	related, err := client.Embed(ctx, "water garden with lilies")
	require.NoError(t, err)
	unrelated, err := client.Embed(ctx, "bronze sword hilt fragment")
	require.NoError(t, err)

	assert.Greater(t, embedder.Dot(query, related), embedder.Dot(query, unrelated))
}

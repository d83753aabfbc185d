// Package hash provides a deterministic, dependency-free embedding provider.
//
// Texts are tokenized and each token is hashed into a fixed number of
// buckets with a sign bit, then the vector is unit-normalized. The result is
// not a semantic model, but it is stable across processes and platforms,
// which makes it a useful offline fallback and the standard provider for
// tests: identical texts always embed to identical vectors, and lexically
// overlapping texts score higher than disjoint ones.
package hash

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/artvector/artvector-go/pkg/embedder"
)

// DefaultDimensions matches the all-MiniLM-L6-v2 family so a hash-embedded
// corpus fits the same schema as a locally inferred one.
const DefaultDimensions = 384

// Client implements embedder.Provider with hashed-token vectors.
type Client struct {
	model      string
	dimensions int
}

// Config contains configuration for creating a hash embedder.
type Config struct {
	// Model names the hashing scheme (default "token-hash-v1"). It is
	// recorded as the provider identity of stored vectors.
	Model string

	// Dimensions is the vector length (default DefaultDimensions).
	Dimensions int
}

// NewClient creates a new hash embedder.
func NewClient(cfg *Config) (*Client, error) {
	model := cfg.Model
	if model == "" {
		model = "token-hash-v1"
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = DefaultDimensions
	}
	if dimensions < 0 {
		return nil, fmt.Errorf("hash embedder: invalid dimensions %d", dimensions)
	}

	return &Client{model: model, dimensions: dimensions}, nil
}

// Embed converts a single text into a unit-normalized vector.
//
// Empty or token-free text returns embedder.ErrZeroVector.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, embedder.ErrZeroVector
	}

	vec := make([]float64, c.dimensions)
	for _, tok := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()

		bucket := int(sum % uint64(c.dimensions))
		// A separate hash bit decides the sign so that bucket collisions do
		// not always reinforce each other.
		if sum&(1<<63) != 0 {
			vec[bucket] -= 1
		} else {
			vec[bucket] += 1
		}
	}

	if err := embedder.Normalize(vec); err != nil {
		return nil, err
	}

	return vec, nil
}

// EmbedBatch converts multiple texts into vectors, order matching input.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := c.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Dimensions returns the vector dimensions.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// Name returns the provider identity.
func (c *Client) Name() string {
	return c.model
}

// Close is a no-op; the hash embedder holds no resources.
func (c *Client) Close() error {
	return nil
}

// tokenize lowercases the text and splits on non-alphanumeric runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

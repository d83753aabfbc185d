// Package embedder provides interfaces for text embedding providers.
//
// It defines the Provider interface that all embedding implementations must
// satisfy. Every provider returns L2-normalized vectors of a fixed length, so
// cosine similarity downstream reduces to a plain dot product. The provider
// and the object store are versioned together: vectors persisted under one
// provider identity must never be scored against another's.
package embedder

import (
	"context"
	"errors"
	"math"
)

// ErrZeroVector indicates that a text produced a zero-norm vector and cannot
// be normalized (typically empty or unencodable input). Callers treat this as
// a deterministic per-item failure, never as NaN/inf passed through.
var ErrZeroVector = errors.New("embedder: zero-norm vector")

// ErrEmptyText indicates that an empty text was submitted for embedding.
var ErrEmptyText = errors.New("embedder: empty text")

// Provider defines the interface for embedding providers.
//
// All embedding implementations (hash, Ollama, OpenAI) must implement this
// interface. Dimensions is fixed for the lifetime of the provider.
type Provider interface {
	// Embed converts a text string into a unit-normalized vector embedding.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch converts multiple text strings into vector embeddings.
	//
	// This method is more efficient than calling Embed multiple times,
	// as implementations can batch process requests. Order matches input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Dimensions returns the dimension of embedding vectors produced by this
	// provider.
	Dimensions() int

	// Name returns the provider's model identity, recorded alongside every
	// stored vector for version-mismatch detection.
	Name() string

	// Close closes the provider and releases resources.
	Close() error
}

// Normalize scales vec in place to unit L2 norm.
//
// A zero or non-finite norm returns ErrZeroVector and leaves vec untouched.
func Normalize(vec []float64) error {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}

	norm := math.Sqrt(sum)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return ErrZeroVector
	}

	for i := range vec {
		vec[i] /= norm
	}

	return nil
}

// Dot returns the dot product of two equal-length vectors.
//
// For unit-normalized vectors this is exactly their cosine similarity.
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Package core provides the main ArtVector client: ingestion, batch
// indexing, similarity search and index status over an object store.
package core

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrNotFound indicates that a requested dataset or object was not found.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidInput indicates that the provided input is invalid
	// (e.g. a non-positive batch size or an empty ingestion request).
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidQuery indicates an invalid search request: empty query text
	// or non-positive k. Rejected before any embedding work starts.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrEmbeddingFailed indicates that embedding generation failed.
	// Inside a batch this is recovered per object; for a search query it
	// fails the whole request.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrDimensionMismatch indicates that a computed or stored vector's
	// length disagrees with the active provider's output length. Fatal for
	// the item; never silently truncated or padded.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrVersionMismatch indicates that the corpus holds vectors produced by
	// a different embedding provider than the one currently active. The two
	// vector spaces must never be mixed in one similarity computation; an
	// explicit re-embedding pass is the migration path.
	ErrVersionMismatch = errors.New("embedding version mismatch")

	// ErrStorageOperation indicates that a storage operation failed.
	ErrStorageOperation = errors.New("storage operation failed")
)

// EngineError wraps errors with operation context.
//
// It records which engine operation failed, making error messages more
// informative for debugging.
//
// Example:
//
//	err := &EngineError{
//	    Op:  "Search",
//	    Err: ErrInvalidQuery,
//	}
//	// Error() returns: "artvector: Search: invalid query"
type EngineError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
//
// The format is: "artvector: <Op>: <Err>"
func (e *EngineError) Error() string {
	return fmt.Sprintf("artvector: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
//
// This allows using errors.Is() and errors.As() with EngineError.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError creates a new EngineError wrapping the given error.
//
// If err is nil, returns nil. This allows safe error wrapping:
//
//	if err != nil {
//	    return NewEngineError("RunBatch", err)
//	}
//
// Parameters:
//   - op: Name of the operation (e.g. "RunBatch", "Search", "Status")
//   - err: The underlying error to wrap
//
// Returns an EngineError, or nil if err is nil.
func NewEngineError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &EngineError{
		Op:  op,
		Err: err,
	}
}

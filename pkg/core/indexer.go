package core

import (
	"context"

	"github.com/artvector/artvector-go/pkg/storage"
)

// RunBatch drains one bounded batch from the unembedded work queue.
//
// The method:
//  1. Selects up to batchSize unembedded objects in deterministic
//     identifier order (optionally scoped to one dataset)
//  2. Builds each object's search text and embeds the batch
//  3. Writes each vector back with a compare-and-set that only transitions
//     an object from unembedded to embedded
//
// Objects whose text cannot be embedded, or whose vector disagrees with the
// provider's dimensionality, are skipped and stay in the queue; the batch
// continues. An object claimed by a concurrent batch between selection and
// write-back is simply not counted as processed here; the data is unchanged
// either way because the vector is a deterministic function of the text.
//
// Repeated calls on a fully embedded corpus return Processed == 0.
//
// Parameters:
//   - ctx: Context for cancellation
//   - batchSize: Maximum number of objects to claim (must be positive)
//   - opts: Optional parameters (WithDataset)
//
// Returns a BatchResult with processed, skipped, and remaining counts, or an
// error if selection or the final count fails.
//
// Example:
//
//	result, err := client.RunBatch(ctx, 50, core.WithDataset("met-1"))
func (c *Client) RunBatch(ctx context.Context, batchSize int, opts ...IndexOption) (*BatchResult, error) {
	if batchSize <= 0 {
		return nil, NewEngineError("RunBatch", ErrInvalidInput)
	}
	options := applyIndexOptions(opts)

	objects, err := c.storage.ListUnembedded(ctx, options.DatasetID, batchSize)
	if err != nil {
		return nil, NewEngineError("RunBatch", err)
	}

	version := storage.EmbeddingVersion{
		Provider:   c.embedder.Name(),
		Dimensions: c.embedder.Dimensions(),
	}

	result := &BatchResult{}
	if len(objects) > 0 {
		texts := make([]string, len(objects))
		for i, obj := range objects {
			texts[i] = BuildText(obj)
		}

		vectors := c.embedBatch(ctx, texts)
		for i, obj := range objects {
			vec := vectors[i]
			if vec == nil || len(vec) != version.Dimensions {
				result.Skipped++
				continue
			}

			claimed, err := c.storage.SetEmbedding(ctx, obj.ID, vec, version)
			if err != nil {
				return nil, NewEngineError("RunBatch", err)
			}
			if claimed {
				result.Processed++
			}
		}
	}

	counts, err := c.storage.Counts(ctx, options.DatasetID)
	if err != nil {
		return nil, NewEngineError("RunBatch", err)
	}
	result.Remaining = counts.Remaining()

	return result, nil
}

// embedBatch embeds a slice of texts, falling back to per-item embedding
// when the batched call fails so one bad text cannot poison the whole batch.
// Failed items are returned as nil vectors.
func (c *Client) embedBatch(ctx context.Context, texts []string) [][]float64 {
	vectors, err := c.embedder.EmbedBatch(ctx, texts)
	if err == nil && len(vectors) == len(texts) {
		return vectors
	}

	vectors = make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := c.embedder.Embed(ctx, text)
		if err != nil {
			continue
		}
		vectors[i] = vec
	}
	return vectors
}

// RunUntilDone repeatedly invokes RunBatch until the unembedded queue is
// empty. Each iteration is independently resumable; the loop adds no
// algorithm of its own.
//
// The loop also stops when a full pass makes no progress (every selected
// object was skipped or claimed elsewhere), so persistently failing objects
// cannot spin it forever; the final BatchResult's Remaining count exposes
// them to the caller.
//
// Parameters:
//   - ctx: Context for cancellation
//   - batchSize: Maximum number of objects to claim per pass (must be positive)
//   - opts: Optional parameters (WithDataset)
//
// Returns the cumulative BatchResult across all passes, or an error if any
// pass fails.
//
// Example:
//
//	result, err := client.RunUntilDone(ctx, 50)
func (c *Client) RunUntilDone(ctx context.Context, batchSize int, opts ...IndexOption) (*BatchResult, error) {
	total := &BatchResult{}

	for {
		result, err := c.RunBatch(ctx, batchSize, opts...)
		if err != nil {
			return nil, err
		}

		total.Processed += result.Processed
		total.Skipped += result.Skipped
		total.Remaining = result.Remaining

		if result.Remaining == 0 || result.Processed == 0 {
			return total, nil
		}

		select {
		case <-ctx.Done():
			return nil, NewEngineError("RunUntilDone", ctx.Err())
		default:
		}
	}
}

// ReindexAll clears every stored embedding in scope and returns the number
// of objects put back on the unembedded work queue.
//
// This is the explicit migration path after swapping embedding providers:
// stored vectors from the old provider are invalid for similarity against
// the new one, so the whole scope is re-entered into the queue and drained
// again by RunBatch or RunUntilDone.
//
// Parameters:
//   - ctx: Context for cancellation
//   - opts: Optional parameters (WithDataset)
//
// Returns the number of cleared embeddings, or an error.
//
// Example:
//
//	cleared, _ := client.ReindexAll(ctx)
//	client.RunUntilDone(ctx, 50)
func (c *Client) ReindexAll(ctx context.Context, opts ...IndexOption) (int64, error) {
	options := applyIndexOptions(opts)

	cleared, err := c.storage.ClearEmbeddings(ctx, options.DatasetID)
	if err != nil {
		return 0, NewEngineError("ReindexAll", err)
	}
	return cleared, nil
}

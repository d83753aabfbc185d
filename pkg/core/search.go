package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/artvector/artvector-go/pkg/embedder"
	"github.com/artvector/artvector-go/pkg/storage"
)

// Search returns the k embedded objects most similar to a free-text query,
// ranked by cosine similarity.
//
// The method:
//  1. Rejects empty queries and non-positive k before any embedding work
//  2. Verifies the embedded corpus was produced by the active provider
//  3. Embeds the query and scores every embedded candidate by dot product
//     (all vectors are unit-normalized, so dot product is cosine similarity)
//  4. Sorts by score descending and truncates to k
//
// Unembedded objects are invisible to search. Ties are broken by object
// identifier order, so results are deterministic. If fewer than k objects
// are embedded, all of them are returned.
//
// Parameters:
//   - ctx: Context for cancellation
//   - query: Free-text query (must be non-empty)
//   - k: Maximum number of results (must be positive)
//   - opts: Optional parameters (WithDatasetFilter, WithImagesOnly, WithMinScore)
//
// Returns matches in descending score order, or an error:
//   - ErrInvalidQuery for an empty query or non-positive k
//   - ErrVersionMismatch if stored vectors came from a different provider
//   - ErrEmbeddingFailed if the query cannot be encoded
//
// Example:
//
//	matches, err := client.Search(ctx, "impressionist water garden painting", 5,
//	    core.WithDatasetFilter("met-1"),
//	)
func (c *Client) Search(ctx context.Context, query string, k int, opts ...SearchOption) ([]*Match, error) {
	if strings.TrimSpace(query) == "" || k <= 0 {
		return nil, NewEngineError("Search", ErrInvalidQuery)
	}
	options := applySearchOptions(opts)

	version := storage.EmbeddingVersion{
		Provider:   c.embedder.Name(),
		Dimensions: c.embedder.Dimensions(),
	}
	if err := c.checkVersions(ctx, options.DatasetID, version); err != nil {
		return nil, err
	}

	queryVec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, NewEngineError("Search", fmt.Errorf("%w: %v", ErrEmbeddingFailed, err))
	}
	if len(queryVec) != version.Dimensions {
		return nil, NewEngineError("Search", ErrDimensionMismatch)
	}

	candidates, err := c.storage.ListEmbedded(ctx, &storage.CandidateOptions{
		DatasetID:    options.DatasetID,
		RequireImage: options.ImagesOnly,
	})
	if err != nil {
		return nil, NewEngineError("Search", err)
	}

	matches := make([]*Match, 0, len(candidates))
	for _, obj := range candidates {
		if len(obj.Embedding) != version.Dimensions {
			return nil, NewEngineError("Search", ErrDimensionMismatch)
		}

		score := embedder.Dot(queryVec, obj.Embedding)
		if options.HasMinScore && score < options.MinScore {
			continue
		}

		obj.Score = score
		matches = append(matches, &Match{Object: obj, Score: score})
	}

	// Candidates arrive in identifier order; the stable sort keeps that
	// order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// checkVersions verifies that every embedding version present in scope
// matches the active provider. Mixing vector spaces in one similarity
// computation is never allowed; the caller must ReindexAll first.
func (c *Client) checkVersions(ctx context.Context, datasetID string, active storage.EmbeddingVersion) error {
	versions, err := c.storage.EmbeddingVersions(ctx, datasetID)
	if err != nil {
		return NewEngineError("Search", err)
	}

	for _, v := range versions {
		if v != active {
			return NewEngineError("Search", fmt.Errorf(
				"%w: corpus embedded with %s/%d, active provider is %s/%d",
				ErrVersionMismatch, v.Provider, v.Dimensions, active.Provider, active.Dimensions,
			))
		}
	}
	return nil
}

package core

// IndexOption is a function type for configuring indexing operations.
//
// Options are applied using the functional options pattern, allowing
// flexible configuration without requiring all parameters.
type IndexOption func(*IndexOptions)

// IndexOptions contains configuration options for indexing operations.
type IndexOptions struct {
	// DatasetID restricts the indexing pass to a single dataset.
	// Empty means all datasets.
	DatasetID string
}

// WithDataset restricts an indexing pass to a single dataset.
//
// Example:
//
//	result, _ := client.RunBatch(ctx, 50, core.WithDataset("met-1"))
func WithDataset(datasetID string) IndexOption {
	return func(opts *IndexOptions) {
		opts.DatasetID = datasetID
	}
}

// StatusOption is a function type for configuring Status operations.
type StatusOption func(*StatusOptions)

// StatusOptions contains configuration options for Status operations.
type StatusOptions struct {
	// DatasetID restricts the status snapshot to a single dataset.
	// Empty means all datasets.
	DatasetID string
}

// WithDatasetForStatus restricts a status snapshot to a single dataset.
//
// Example:
//
//	status, _ := client.Status(ctx, core.WithDatasetForStatus("met-1"))
func WithDatasetForStatus(datasetID string) StatusOption {
	return func(opts *StatusOptions) {
		opts.DatasetID = datasetID
	}
}

// SearchOption is a function type for configuring Search operations.
type SearchOption func(*SearchOptions)

// SearchOptions contains configuration options for Search operations.
type SearchOptions struct {
	// DatasetID restricts the candidate set to a single dataset.
	// Empty means all datasets.
	DatasetID string

	// ImagesOnly restricts the candidate set to objects with an image URL.
	ImagesOnly bool

	// MinScore sets the minimum similarity score for results.
	// Results with scores below this threshold are excluded.
	// Default: 0.0 (no minimum; similarity can be negative)
	MinScore float64

	// HasMinScore records whether MinScore was set explicitly.
	HasMinScore bool
}

// WithDatasetFilter restricts Search to a single dataset's objects.
//
// Example:
//
//	matches, _ := client.Search(ctx, "impressionist water scenes", 5,
//	    core.WithDatasetFilter("met-1"))
func WithDatasetFilter(datasetID string) SearchOption {
	return func(opts *SearchOptions) {
		opts.DatasetID = datasetID
	}
}

// WithImagesOnly restricts Search to objects that have an image URL.
//
// Example:
//
//	matches, _ := client.Search(ctx, "portrait", 10, core.WithImagesOnly(true))
func WithImagesOnly(imagesOnly bool) SearchOption {
	return func(opts *SearchOptions) {
		opts.ImagesOnly = imagesOnly
	}
}

// WithMinScore sets the minimum similarity score for Search results.
//
// Only results with similarity scores >= minScore are returned.
// Cosine similarity ranges over [-1, 1], where 1 is identical.
//
// Example:
//
//	matches, _ := client.Search(ctx, "query", 10, core.WithMinScore(0.3))
func WithMinScore(score float64) SearchOption {
	return func(opts *SearchOptions) {
		opts.MinScore = score
		opts.HasMinScore = true
	}
}

// ListOption is a function type for configuring Objects listing operations.
type ListOption func(*ListOptions)

// ListOptions contains configuration options for Objects listing operations.
type ListOptions struct {
	// DatasetID restricts listing to a single dataset.
	DatasetID string

	// Limit sets the maximum number of results to return.
	// Default: 100
	Limit int

	// Offset sets the number of results to skip (for pagination).
	// Default: 0
	Offset int
}

// WithDatasetForList restricts Objects listing to a single dataset.
func WithDatasetForList(datasetID string) ListOption {
	return func(opts *ListOptions) {
		opts.DatasetID = datasetID
	}
}

// WithLimit sets the maximum number of results for Objects listing.
//
// Example:
//
//	objects, _ := client.Objects(ctx, core.WithLimit(50))
func WithLimit(limit int) ListOption {
	return func(opts *ListOptions) {
		opts.Limit = limit
	}
}

// WithOffset sets the offset for Objects listing (for pagination).
//
// Example:
//
//	// Get second page of results
//	objects, _ := client.Objects(ctx, core.WithLimit(50), core.WithOffset(50))
func WithOffset(offset int) ListOption {
	return func(opts *ListOptions) {
		opts.Offset = offset
	}
}

// applyIndexOptions applies Index options to create IndexOptions.
func applyIndexOptions(opts []IndexOption) *IndexOptions {
	options := &IndexOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// applyStatusOptions applies Status options to create StatusOptions.
func applyStatusOptions(opts []StatusOption) *StatusOptions {
	options := &StatusOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// applySearchOptions applies Search options to create SearchOptions.
func applySearchOptions(opts []SearchOption) *SearchOptions {
	options := &SearchOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// applyListOptions applies List options to create ListOptions.
func applyListOptions(opts []ListOption) *ListOptions {
	options := &ListOptions{
		Limit:  100,
		Offset: 0,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

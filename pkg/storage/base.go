// Package storage provides interfaces and types for object store backends.
//
// It defines the ObjectStore interface that all storage implementations must
// satisfy, along with the dataset and object types shared across the engine.
// The presence or absence of an object's embedding is the sole signal for
// queue membership: an object with a NULL embedding column is unembedded and
// eligible for indexing, an object with a stored vector is done.
package storage

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by ObjectStore implementations.
var (
	// ErrDatasetNotFound indicates no dataset exists with the given ID.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrObjectNotFound indicates no object exists with the given ID.
	ErrObjectNotFound = errors.New("object not found")
)

// Dataset is a named ingestion batch and the ownership scope for objects.
//
// A dataset is created once per upload and is immutable afterwards except for
// ObjectCount, which is set exactly once when ingestion finishes.
type Dataset struct {
	// ID is the unique dataset slug.
	ID string `json:"dataset_id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// SourceType tags the origin of the data (e.g. "museum").
	SourceType string `json:"source_type"`

	// Filename is the original uploaded file name.
	Filename string `json:"filename,omitempty"`

	// Fields is the ordered list of metadata field names observed in the source.
	Fields []string `json:"fields,omitempty"`

	// ObjectCount is the number of objects ingested into this dataset.
	ObjectCount int64 `json:"num_objects"`

	// CreatedAt is when the dataset was registered.
	CreatedAt time.Time `json:"created_at"`
}

// EmbeddingVersion identifies the provider that produced a stored vector.
//
// It is recorded alongside every embedding so that a corpus embedded with one
// model is never silently mixed with vectors from another into a single
// similarity computation.
type EmbeddingVersion struct {
	// Provider is the embedding model identity (e.g. "all-minilm").
	Provider string `json:"provider"`

	// Dimensions is the vector length produced by that provider.
	Dimensions int `json:"dimensions"`
}

// Object is one retrievable unit owned by a dataset.
//
// The ID combines the owning dataset's ID with the source-provided identifier,
// which keeps objects globally unique even across datasets whose source IDs
// collide. Embedding is nil until the batch indexer attaches a vector; the
// transition is monotonic and happens at most once.
type Object struct {
	// ID is the globally unique identifier, "<dataset_id>/<source_id>".
	ID string `json:"id"`

	// DatasetID references the owning dataset.
	DatasetID string `json:"dataset_id"`

	// SourceID is the identifier carried by the original source row.
	SourceID string `json:"original_id"`

	// Title is the display title extracted at ingestion.
	Title string `json:"title"`

	// Artist is the creator/artist display field.
	Artist string `json:"artist,omitempty"`

	// ImageURL references the object's primary image, if any.
	ImageURL string `json:"image_url,omitempty"`

	// HasImage reports whether the source row carried an image reference.
	HasImage bool `json:"has_image"`

	// Raw preserves the complete original source row verbatim.
	Raw map[string]string `json:"raw,omitempty"`

	// Embedding is the stored vector, nil while the object is unembedded.
	// Omitted from JSON to reduce payload size.
	Embedding []float64 `json:"-"`

	// Version identifies the provider that produced Embedding (nil if unembedded).
	Version *EmbeddingVersion `json:"embedding_version,omitempty"`

	// CreatedAt is when the object was ingested.
	CreatedAt time.Time `json:"created_at"`

	// EmbeddedAt is when the embedding was attached (nil if unembedded).
	EmbeddedAt *time.Time `json:"embedded_at,omitempty"`

	// Score is the similarity score from search operations.
	Score float64 `json:"score,omitempty"`
}

// Embedded reports whether the object carries a stored vector.
func (o *Object) Embedded() bool {
	return len(o.Embedding) > 0
}

// IndexCounts is the store's current embedded/unembedded classification.
type IndexCounts struct {
	// Total is the number of objects in scope.
	Total int64

	// Embedded is the number of objects with a stored vector.
	Embedded int64
}

// Remaining returns the size of the derived unembedded work queue.
func (c *IndexCounts) Remaining() int64 {
	return c.Total - c.Embedded
}

// ListOptions contains options for listing objects.
type ListOptions struct {
	// DatasetID restricts results to one dataset ("" = all datasets).
	DatasetID string

	// Limit sets the maximum number of results to return.
	Limit int

	// Offset sets the number of results to skip (for pagination).
	Offset int
}

// CandidateOptions filters the embedded candidate set for similarity search.
//
// Filters are applied by the store before any ranking happens, so a
// filtered-out object can never consume a top-K slot.
type CandidateOptions struct {
	// DatasetID restricts candidates to one dataset ("" = all datasets).
	DatasetID string

	// RequireImage keeps only objects with HasImage set.
	RequireImage bool
}

// ObjectStore defines the interface for object store backends.
//
// All storage implementations (SQLite, PostgreSQL, MySQL) must implement this
// interface. SetEmbedding is the concurrency-critical operation: it must only
// transition an object from unembedded to embedded when it is currently
// unembedded, a compare-and-set at the storage layer.
type ObjectStore interface {
	// CreateDataset registers a new dataset.
	CreateDataset(ctx context.Context, ds *Dataset) error

	// GetDataset retrieves a dataset by ID.
	GetDataset(ctx context.Context, id string) (*Dataset, error)

	// ListDatasets returns all registered datasets, newest first.
	ListDatasets(ctx context.Context) ([]*Dataset, error)

	// SetObjectCount records the dataset's object count once at ingestion time.
	SetObjectCount(ctx context.Context, datasetID string, count int64) error

	// InsertObjects inserts a batch of unembedded objects.
	InsertObjects(ctx context.Context, objects []*Object) error

	// GetObject retrieves an object by its globally unique ID.
	GetObject(ctx context.Context, id string) (*Object, error)

	// ListObjects lists objects with optional dataset filter and pagination,
	// ordered by object ID ascending.
	ListObjects(ctx context.Context, opts *ListOptions) ([]*Object, error)

	// ListUnembedded returns up to limit objects without a stored embedding,
	// ordered by object ID ascending. The deterministic order is what makes
	// batch runs reproducible and resumable.
	ListUnembedded(ctx context.Context, datasetID string, limit int) ([]*Object, error)

	// ListEmbedded returns every object with a stored embedding that passes
	// the candidate filters, ordered by object ID ascending.
	ListEmbedded(ctx context.Context, opts *CandidateOptions) ([]*Object, error)

	// SetEmbedding attaches a vector to an object if and only if it is still
	// unembedded. Returns true when this call claimed the object, false when
	// another writer already did (idempotent no-op).
	SetEmbedding(ctx context.Context, objectID string, embedding []float64, version EmbeddingVersion) (bool, error)

	// ClearEmbeddings removes stored vectors in scope, returning the queue to
	// its unembedded state. Used for explicit re-embedding after a provider
	// change. Returns the number of objects cleared.
	ClearEmbeddings(ctx context.Context, datasetID string) (int64, error)

	// Counts returns the current embedded/unembedded classification, scoped
	// optionally to one dataset.
	Counts(ctx context.Context, datasetID string) (*IndexCounts, error)

	// EmbeddingVersions returns the distinct provider versions present among
	// embedded objects in scope.
	EmbeddingVersions(ctx context.Context, datasetID string) ([]EmbeddingVersion, error)

	// Close closes the store and releases resources.
	Close() error
}

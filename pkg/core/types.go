package core

import (
	"github.com/artvector/artvector-go/pkg/storage"
)

// BatchResult reports the outcome of one indexing batch.
type BatchResult struct {
	// Processed is the number of objects this run embedded and claimed.
	Processed int `json:"processed"`

	// Skipped is the number of selected objects whose text could not be
	// embedded (or whose vector failed dimensionality validation). They stay
	// in the unembedded queue.
	Skipped int `json:"skipped,omitempty"`

	// Remaining is the size of the unembedded queue after this run.
	Remaining int64 `json:"remaining"`
}

// IndexStatus is a read-only snapshot of indexing progress, derived from the
// object store's embedded/unembedded classification on every call.
type IndexStatus struct {
	// Total is the number of objects in scope.
	Total int64 `json:"total"`

	// Embedded is the number of objects with a stored vector.
	Embedded int64 `json:"embedded"`

	// Remaining is the number of objects still awaiting embedding.
	Remaining int64 `json:"remaining"`

	// Done reports whether the unembedded queue is empty.
	Done bool `json:"done"`
}

// Match pairs an object with its similarity score for search results.
type Match struct {
	// Object is the matched object.
	Object *storage.Object `json:"obj"`

	// Score is the cosine similarity between the query and the object's
	// stored vector, in [-1, 1].
	Score float64 `json:"score"`
}

// IngestRequest describes one dataset upload: the dataset's identity plus
// the raw source rows to insert as unembedded objects.
type IngestRequest struct {
	// DatasetID is the unique dataset slug; generated from Name when empty.
	DatasetID string

	// Name is the display name (defaults to the dataset ID).
	Name string

	// SourceType tags the origin of the data (e.g. "museum").
	SourceType string

	// Filename is the original uploaded file name.
	Filename string

	// Fields is the ordered list of field names observed in the source.
	Fields []string

	// Rows are the raw source rows, one field-name-to-value mapping each.
	Rows []map[string]string
}

package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/artvector/artvector-go/pkg/storage"
)

// selectObject is the shared column list for object queries.
const selectObject = `
	SELECT id, dataset_id, source_id, title, artist, image_url, has_image,
	       raw, embedding, embedding_provider, embedding_dims, created_at, embedded_at
	FROM objects`

// queueState selects which side of the embedded/unembedded classification a
// query targets.
type queueState int

const (
	queueAny queueState = iota
	queueUnembedded
	queueEmbedded
)

// buildObjectWhere builds a WHERE clause for object queries.
func buildObjectWhere(datasetID string, state queueState, requireImage bool) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	if datasetID != "" {
		conditions = append(conditions, "dataset_id = ?")
		args = append(args, datasetID)
	}

	switch state {
	case queueUnembedded:
		conditions = append(conditions, "embedding IS NULL")
	case queueEmbedded:
		conditions = append(conditions, "embedding IS NOT NULL")
	}

	if requireImage {
		conditions = append(conditions, "has_image = 1")
	}

	if len(conditions) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// rowScanner abstracts over sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanDataset scans a dataset from a database row or rows.
func scanDataset(scanner rowScanner) (*storage.Dataset, error) {
	var ds storage.Dataset
	var fieldsStr sql.NullString

	err := scanner.Scan(
		&ds.ID,
		&ds.Name,
		&ds.SourceType,
		&ds.Filename,
		&fieldsStr,
		&ds.ObjectCount,
		&ds.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if fieldsStr.Valid && fieldsStr.String != "" {
		if err := json.Unmarshal([]byte(fieldsStr.String), &ds.Fields); err != nil {
			return nil, fmt.Errorf("parse fields: %w", err)
		}
	}

	return &ds, nil
}

// scanObject scans an object from a database row or rows.
func scanObject(scanner rowScanner) (*storage.Object, error) {
	var obj storage.Object
	var hasImage int
	var rawStr string
	var embeddingStr sql.NullString
	var provider sql.NullString
	var dims sql.NullInt64
	var embeddedAt sql.NullTime

	err := scanner.Scan(
		&obj.ID,
		&obj.DatasetID,
		&obj.SourceID,
		&obj.Title,
		&obj.Artist,
		&obj.ImageURL,
		&hasImage,
		&rawStr,
		&embeddingStr,
		&provider,
		&dims,
		&obj.CreatedAt,
		&embeddedAt,
	)
	if err != nil {
		return nil, err
	}

	obj.HasImage = hasImage != 0

	// Parse the opaque original row
	if rawStr != "" {
		if err := json.Unmarshal([]byte(rawStr), &obj.Raw); err != nil {
			return nil, fmt.Errorf("parse raw row: %w", err)
		}
	}

	// Parse embedding (NULL means unembedded)
	if embeddingStr.Valid && embeddingStr.String != "" {
		if err := json.Unmarshal([]byte(embeddingStr.String), &obj.Embedding); err != nil {
			return nil, fmt.Errorf("parse embedding: %w", err)
		}
		obj.Version = &storage.EmbeddingVersion{
			Provider:   provider.String,
			Dimensions: int(dims.Int64),
		}
	}

	if embeddedAt.Valid {
		obj.EmbeddedAt = &embeddedAt.Time
	}

	return &obj, nil
}

// boolToInt maps a bool onto SQLite's integer boolean representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

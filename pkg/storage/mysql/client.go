// Package mysql provides the MySQL implementation of the object store.
//
// Plain MySQL has no native vector type, so vectors are stored as JSON
// strings in LONGTEXT columns, mirroring the SQLite backend. Similarity is
// computed in process by the engine.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/artvector/artvector-go/pkg/storage"
)

// Client is a MySQL object store.
type Client struct {
	db *sql.DB
}

// Config contains MySQL configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// NewClient creates a new MySQL client.
func NewClient(cfg *Config) (*Client, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	client := &Client{db: db}

	// Initialize table structure
	if err := client.initTables(context.Background()); err != nil {
		return nil, err
	}

	return client, nil
}

// initTables initializes the database tables.
func (c *Client) initTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(512) NOT NULL,
			source_type VARCHAR(128),
			filename VARCHAR(512),
			fields JSON,
			object_count BIGINT NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS objects (
			id VARCHAR(512) PRIMARY KEY,
			dataset_id VARCHAR(255) NOT NULL,
			source_id VARCHAR(255) NOT NULL,
			title TEXT,
			artist TEXT,
			image_url TEXT,
			has_image TINYINT(1) NOT NULL DEFAULT 0,
			raw JSON NOT NULL,
			embedding LONGTEXT,
			embedding_provider VARCHAR(255),
			embedding_dims INT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			embedded_at DATETIME,
			INDEX idx_objects_dataset (dataset_id),
			INDEX idx_objects_dataset_id (dataset_id, id)
		)`,
	}

	for _, query := range queries {
		if _, err := c.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("initTables: %w", err)
		}
	}

	return nil
}

// CreateDataset registers a new dataset.
func (c *Client) CreateDataset(ctx context.Context, ds *storage.Dataset) error {
	fieldsJSON, err := json.Marshal(ds.Fields)
	if err != nil {
		return fmt.Errorf("CreateDataset: %w", err)
	}

	if ds.CreatedAt.IsZero() {
		ds.CreatedAt = time.Now()
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO datasets (id, name, source_type, filename, fields, object_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ds.ID, ds.Name, ds.SourceType, ds.Filename, string(fieldsJSON), ds.ObjectCount, ds.CreatedAt)
	if err != nil {
		return fmt.Errorf("CreateDataset: %w", err)
	}

	return nil
}

// GetDataset retrieves a dataset by ID.
func (c *Client) GetDataset(ctx context.Context, id string) (*storage.Dataset, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, name, source_type, filename, fields, object_count, created_at
		FROM datasets
		WHERE id = ?
	`, id)

	ds, err := scanDataset(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("GetDataset: %w", storage.ErrDatasetNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetDataset: %w", err)
	}

	return ds, nil
}

// ListDatasets returns all registered datasets, newest first.
func (c *Client) ListDatasets(ctx context.Context) ([]*storage.Dataset, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, source_type, filename, fields, object_count, created_at
		FROM datasets
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("ListDatasets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var datasets []*storage.Dataset
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, fmt.Errorf("ListDatasets: %w", err)
		}
		datasets = append(datasets, ds)
	}

	return datasets, rows.Err()
}

// SetObjectCount records the dataset's object count.
func (c *Client) SetObjectCount(ctx context.Context, datasetID string, count int64) error {
	result, err := c.db.ExecContext(ctx,
		`UPDATE datasets SET object_count = ? WHERE id = ?`, count, datasetID)
	if err != nil {
		return fmt.Errorf("SetObjectCount: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("SetObjectCount: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("SetObjectCount: %w", storage.ErrDatasetNotFound)
	}

	return nil
}

// InsertObjects inserts a batch of unembedded objects in one transaction.
func (c *Client) InsertObjects(ctx context.Context, objects []*storage.Object) error {
	if len(objects) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("InsertObjects: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO objects (id, dataset_id, source_id, title, artist, image_url, has_image, raw, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("InsertObjects: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, obj := range objects {
		rawJSON, err := json.Marshal(obj.Raw)
		if err != nil {
			return fmt.Errorf("InsertObjects: %w", err)
		}

		if obj.CreatedAt.IsZero() {
			obj.CreatedAt = time.Now()
		}

		_, err = stmt.ExecContext(ctx,
			obj.ID, obj.DatasetID, obj.SourceID,
			obj.Title, obj.Artist, obj.ImageURL, obj.HasImage,
			string(rawJSON), obj.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("InsertObjects: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("InsertObjects: %w", err)
	}

	return nil
}

// GetObject retrieves an object by ID.
func (c *Client) GetObject(ctx context.Context, id string) (*storage.Object, error) {
	row := c.db.QueryRowContext(ctx, selectObject+` WHERE id = ?`, id)

	obj, err := scanObject(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("GetObject: %w", storage.ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetObject: %w", err)
	}

	return obj, nil
}

// ListObjects lists objects ordered by ID with optional dataset filter.
func (c *Client) ListObjects(ctx context.Context, opts *storage.ListOptions) ([]*storage.Object, error) {
	if opts == nil {
		opts = &storage.ListOptions{}
	}

	whereClause, args := buildObjectWhere(opts.DatasetID, queueAny, false)

	limit := opts.Limit
	if limit <= 0 {
		// MySQL has no "no limit" sentinel; use the documented max row count.
		limit = 1<<31 - 1
	}

	query := selectObject + " " + whereClause + ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)

	return c.queryObjects(ctx, "ListObjects", query, args...)
}

// ListUnembedded returns up to limit unembedded objects ordered by ID.
func (c *Client) ListUnembedded(ctx context.Context, datasetID string, limit int) ([]*storage.Object, error) {
	whereClause, args := buildObjectWhere(datasetID, queueUnembedded, false)

	query := selectObject + " " + whereClause + ` ORDER BY id LIMIT ?`
	args = append(args, limit)

	return c.queryObjects(ctx, "ListUnembedded", query, args...)
}

// ListEmbedded returns all embedded objects passing the candidate filters,
// ordered by ID.
func (c *Client) ListEmbedded(ctx context.Context, opts *storage.CandidateOptions) ([]*storage.Object, error) {
	if opts == nil {
		opts = &storage.CandidateOptions{}
	}

	whereClause, args := buildObjectWhere(opts.DatasetID, queueEmbedded, opts.RequireImage)

	query := selectObject + " " + whereClause + ` ORDER BY id`

	return c.queryObjects(ctx, "ListEmbedded", query, args...)
}

// SetEmbedding attaches a vector to an object if it is still unembedded.
func (c *Client) SetEmbedding(ctx context.Context, objectID string, embedding []float64, version storage.EmbeddingVersion) (bool, error) {
	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return false, fmt.Errorf("SetEmbedding: %w", err)
	}

	result, err := c.db.ExecContext(ctx, `
		UPDATE objects
		SET embedding = ?, embedding_provider = ?, embedding_dims = ?, embedded_at = ?
		WHERE id = ? AND embedding IS NULL
	`, string(embeddingJSON), version.Provider, version.Dimensions, time.Now(), objectID)
	if err != nil {
		return false, fmt.Errorf("SetEmbedding: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("SetEmbedding: %w", err)
	}

	return affected > 0, nil
}

// ClearEmbeddings removes stored vectors in scope.
func (c *Client) ClearEmbeddings(ctx context.Context, datasetID string) (int64, error) {
	whereClause, args := buildObjectWhere(datasetID, queueEmbedded, false)

	query := `
		UPDATE objects
		SET embedding = NULL, embedding_provider = NULL, embedding_dims = NULL, embedded_at = NULL
	` + " " + whereClause

	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("ClearEmbeddings: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ClearEmbeddings: %w", err)
	}

	return affected, nil
}

// Counts returns the current embedded/unembedded classification.
func (c *Client) Counts(ctx context.Context, datasetID string) (*storage.IndexCounts, error) {
	whereClause, args := buildObjectWhere(datasetID, queueAny, false)

	query := `SELECT COUNT(*), COUNT(embedding) FROM objects ` + whereClause

	var counts storage.IndexCounts
	err := c.db.QueryRowContext(ctx, query, args...).Scan(&counts.Total, &counts.Embedded)
	if err != nil {
		return nil, fmt.Errorf("Counts: %w", err)
	}

	return &counts, nil
}

// EmbeddingVersions returns the distinct provider versions among embedded
// objects in scope.
func (c *Client) EmbeddingVersions(ctx context.Context, datasetID string) ([]storage.EmbeddingVersion, error) {
	whereClause, args := buildObjectWhere(datasetID, queueEmbedded, false)

	query := `SELECT DISTINCT embedding_provider, embedding_dims FROM objects ` + whereClause

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("EmbeddingVersions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var versions []storage.EmbeddingVersion
	for rows.Next() {
		var v storage.EmbeddingVersion
		if err := rows.Scan(&v.Provider, &v.Dimensions); err != nil {
			return nil, fmt.Errorf("EmbeddingVersions: %w", err)
		}
		versions = append(versions, v)
	}

	return versions, rows.Err()
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// queryObjects runs an object query and scans all rows.
func (c *Client) queryObjects(ctx context.Context, op, query string, args ...interface{}) ([]*storage.Object, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var objects []*storage.Object
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		objects = append(objects, obj)
	}

	return objects, rows.Err()
}

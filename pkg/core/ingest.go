package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/artvector/artvector-go/pkg/ingest"
	"github.com/artvector/artvector-go/pkg/storage"
)

// IngestDataset registers a dataset and inserts its source rows as
// unembedded objects.
//
// The method:
//  1. Resolves the dataset ID (slugified name plus a generated suffix when
//     the request does not supply one)
//  2. Creates the dataset record
//  3. Builds one object per source row, each owned by the dataset and
//     initially unembedded
//  4. Inserts the objects and fixes the dataset's object count
//
// Objects enter the unembedded work queue purely by having no stored vector;
// a subsequent RunBatch or RunUntilDone pass drains them.
//
// Parameters:
//   - ctx: Context for cancellation
//   - req: Dataset identity plus raw source rows
//
// Returns the created Dataset, or an error if the operation fails.
//
// Example:
//
//	parsed, _ := ingest.ParseCSV(file)
//	ds, err := client.IngestDataset(ctx, &core.IngestRequest{
//	    Name:       "Met Highlights",
//	    SourceType: "museum",
//	    Filename:   "met.csv",
//	    Fields:     parsed.Fields,
//	    Rows:       parsed.Rows,
//	})
func (c *Client) IngestDataset(ctx context.Context, req *IngestRequest) (*storage.Dataset, error) {
	if req == nil || len(req.Rows) == 0 {
		return nil, NewEngineError("IngestDataset", ErrInvalidInput)
	}

	name := strings.TrimSpace(req.Name)
	datasetID := strings.TrimSpace(req.DatasetID)
	if datasetID == "" {
		datasetID = c.newDatasetID(name)
	}
	if name == "" {
		name = datasetID
	}

	ds := &storage.Dataset{
		ID:         datasetID,
		Name:       name,
		SourceType: req.SourceType,
		Filename:   req.Filename,
		Fields:     req.Fields,
		CreatedAt:  time.Now().UTC(),
	}
	if err := c.storage.CreateDataset(ctx, ds); err != nil {
		return nil, NewEngineError("IngestDataset", err)
	}

	objects := ingest.BuildObjects(datasetID, req.Rows)
	if err := c.storage.InsertObjects(ctx, objects); err != nil {
		return nil, NewEngineError("IngestDataset", err)
	}

	ds.ObjectCount = int64(len(objects))
	if err := c.storage.SetObjectCount(ctx, datasetID, ds.ObjectCount); err != nil {
		return nil, NewEngineError("IngestDataset", err)
	}

	return ds, nil
}

// newDatasetID derives a unique dataset slug from a display name.
func (c *Client) newDatasetID(name string) string {
	slug := slugify(name)
	suffix := c.snowflakeNode.Generate().Base36()
	if slug == "" {
		return "dataset-" + suffix
	}
	return fmt.Sprintf("%s-%s", slug, suffix)
}

// slugify lowercases a name and collapses non-alphanumeric runs to hyphens.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

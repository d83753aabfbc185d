package core

import (
	"context"
	"errors"

	"github.com/artvector/artvector-go/pkg/storage"
)

// Datasets lists all registered datasets in creation order.
//
// Example:
//
//	datasets, _ := client.Datasets(ctx)
func (c *Client) Datasets(ctx context.Context) ([]*storage.Dataset, error) {
	datasets, err := c.storage.ListDatasets(ctx)
	if err != nil {
		return nil, NewEngineError("Datasets", err)
	}
	return datasets, nil
}

// GetDataset returns one dataset by ID.
//
// Returns ErrNotFound if no dataset has that ID.
func (c *Client) GetDataset(ctx context.Context, id string) (*storage.Dataset, error) {
	ds, err := c.storage.GetDataset(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrDatasetNotFound) {
			return nil, NewEngineError("GetDataset", ErrNotFound)
		}
		return nil, NewEngineError("GetDataset", err)
	}
	return ds, nil
}

// GetObject returns one object by its globally unique identifier
// ("<dataset_id>/<source_id>").
//
// Returns ErrNotFound if no object has that ID.
func (c *Client) GetObject(ctx context.Context, id string) (*storage.Object, error) {
	obj, err := c.storage.GetObject(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, NewEngineError("GetObject", ErrNotFound)
		}
		return nil, NewEngineError("GetObject", err)
	}
	return obj, nil
}

// Objects lists objects in identifier order, with optional dataset scoping
// and pagination.
//
// Example:
//
//	objects, _ := client.Objects(ctx,
//	    core.WithDatasetForList("met-1"),
//	    core.WithLimit(50),
//	)
func (c *Client) Objects(ctx context.Context, opts ...ListOption) ([]*storage.Object, error) {
	options := applyListOptions(opts)

	objects, err := c.storage.ListObjects(ctx, &storage.ListOptions{
		DatasetID: options.DatasetID,
		Limit:     options.Limit,
		Offset:    options.Offset,
	})
	if err != nil {
		return nil, NewEngineError("Objects", err)
	}
	return objects, nil
}

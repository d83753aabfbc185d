package core

import (
	"context"
)

// Status reports indexing progress as a read-only snapshot.
//
// The counts are derived from the object store's embedded/unembedded
// classification on every call; there is no separate progress state that
// could drift from the stored rows.
//
// Parameters:
//   - ctx: Context for cancellation
//   - opts: Optional parameters (WithDatasetForStatus)
//
// Returns an IndexStatus, or an error if counting fails.
//
// Example:
//
//	status, _ := client.Status(ctx, core.WithDatasetForStatus("met-1"))
//	if status.Done {
//	    // queue drained
//	}
func (c *Client) Status(ctx context.Context, opts ...StatusOption) (*IndexStatus, error) {
	options := applyStatusOptions(opts)

	counts, err := c.storage.Counts(ctx, options.DatasetID)
	if err != nil {
		return nil, NewEngineError("Status", err)
	}

	return &IndexStatus{
		Total:     counts.Total,
		Embedded:  counts.Embedded,
		Remaining: counts.Remaining(),
		Done:      counts.Remaining() == 0,
	}, nil
}

package core_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artvector/artvector-go/pkg/core"
	"github.com/artvector/artvector-go/pkg/embedder"
	hashEmbedder "github.com/artvector/artvector-go/pkg/embedder/hash"
	"github.com/artvector/artvector-go/pkg/storage"
	sqliteStore "github.com/artvector/artvector-go/pkg/storage/sqlite"
)

func newTestStore(t *testing.T) storage.ObjectStore {
	t.Helper()

	store, err := sqliteStore.NewClient(&sqliteStore.Config{
		DBPath: filepath.Join(t.TempDir(), "artvector_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func newTestClient(t *testing.T) *core.Client {
	t.Helper()
	return newTestClientWith(t, newTestStore(t), "")
}

func newTestClientWith(t *testing.T, store storage.ObjectStore, model string) *core.Client {
	t.Helper()

	provider, err := hashEmbedder.NewClient(&hashEmbedder.Config{Model: model, Dimensions: 128})
	require.NoError(t, err)

	client, err := core.NewClientWith(store, provider)
	require.NoError(t, err)

	return client
}

func ingestGallery(t *testing.T, client *core.Client) string {
	t.Helper()

	ds, err := client.IngestDataset(context.Background(), &core.IngestRequest{
		DatasetID:  "met-1",
		Name:       "Met Highlights",
		SourceType: "museum",
		Filename:   "met.csv",
		Fields:     []string{"Object ID", "Title", "Artist"},
		Rows: []map[string]string{
			{"Object ID": "1", "Title": "Water Lilies", "Artist": "Monet"},
			{"Object ID": "2", "Title": "Starry Night", "Artist": "Van Gogh"},
			{"Object ID": "3", "Title": "The Scream", "Artist": "Munch"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "met-1", ds.ID)
	require.Equal(t, int64(3), ds.ObjectCount)

	return ds.ID
}

func TestIngestDataset(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	id := ingestGallery(t, client)

	ds, err := client.GetDataset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Met Highlights", ds.Name)
	assert.Equal(t, "museum", ds.SourceType)

	objects, err := client.Objects(ctx, core.WithDatasetForList(id))
	require.NoError(t, err)
	require.Len(t, objects, 3)
	for _, obj := range objects {
		assert.False(t, obj.Embedded())
	}

	status, err := client.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), status.Total)
	assert.Equal(t, int64(3), status.Remaining)
	assert.False(t, status.Done)
}

func TestIngestDataset_GeneratedID(t *testing.T) {
	client := newTestClient(t)

	ds, err := client.IngestDataset(context.Background(), &core.IngestRequest{
		Name: "Rijksmuseum Paintings!",
		Rows: []map[string]string{{"Title": "The Night Watch"}},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ds.ID, "rijksmuseum-paintings-"), "got %q", ds.ID)
}

func TestIngestDataset_Empty(t *testing.T) {
	client := newTestClient(t)

	_, err := client.IngestDataset(context.Background(), &core.IngestRequest{Name: "empty"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestRunBatch_ProgressiveScenario(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	id := ingestGallery(t, client)

	// First batch of 2 embeds the first two objects by identifier order.
	result, err := client.RunBatch(ctx, 2, core.WithDataset(id))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, int64(1), result.Remaining)

	objects, err := client.Objects(ctx, core.WithDatasetForList(id))
	require.NoError(t, err)
	assert.True(t, objects[0].Embedded())
	assert.True(t, objects[1].Embedded())
	assert.False(t, objects[2].Embedded())

	// Second batch picks up the last one.
	result, err = client.RunBatch(ctx, 2, core.WithDataset(id))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, int64(0), result.Remaining)

	status, err := client.Status(ctx, core.WithDatasetForStatus(id))
	require.NoError(t, err)
	assert.Equal(t, int64(3), status.Total)
	assert.Equal(t, int64(3), status.Embedded)
	assert.Equal(t, int64(0), status.Remaining)
	assert.True(t, status.Done)

	matches, err := client.Search(ctx, "impressionist water garden painting", 1,
		core.WithDatasetFilter(id))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Water Lilies", matches[0].Object.Title)
}

func TestRunBatch_IdempotentWhenDone(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	id := ingestGallery(t, client)

	_, err := client.RunUntilDone(ctx, 10, core.WithDataset(id))
	require.NoError(t, err)

	result, err := client.RunBatch(ctx, 10, core.WithDataset(id))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, int64(0), result.Remaining)
}

func TestRunBatch_InvalidBatchSize(t *testing.T) {
	client := newTestClient(t)

	_, err := client.RunBatch(context.Background(), 0)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = client.RunBatch(context.Background(), -5)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestRunUntilDone_ConvergesForAnyBatchSize(t *testing.T) {
	for _, batchSize := range []int{1, 3, 4} {
		store := newTestStore(t)
		client := newTestClientWith(t, store, "")
		ctx := context.Background()

		id := ingestGallery(t, client)

		result, err := client.RunUntilDone(ctx, batchSize, core.WithDataset(id))
		require.NoError(t, err)
		assert.Equal(t, 3, result.Processed, "batch size %d", batchSize)
		assert.Equal(t, int64(0), result.Remaining, "batch size %d", batchSize)

		status, err := client.Status(ctx, core.WithDatasetForStatus(id))
		require.NoError(t, err)
		assert.True(t, status.Done, "batch size %d", batchSize)
	}
}

func TestRunBatch_CrashResume(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := newTestClientWith(t, store, "")
	id := ingestGallery(t, first)

	_, err := first.RunBatch(ctx, 2, core.WithDataset(id))
	require.NoError(t, err)

	// A fresh client over the same store resumes exactly where the first
	// stopped: one object left, none embedded twice.
	second := newTestClientWith(t, store, "")
	result, err := second.RunBatch(ctx, 10, core.WithDataset(id))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, int64(0), result.Remaining)
}

func TestReindexAll(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	id := ingestGallery(t, client)
	_, err := client.RunUntilDone(ctx, 10, core.WithDataset(id))
	require.NoError(t, err)

	cleared, err := client.ReindexAll(ctx, core.WithDataset(id))
	require.NoError(t, err)
	assert.Equal(t, int64(3), cleared)

	status, err := client.Status(ctx, core.WithDatasetForStatus(id))
	require.NoError(t, err)
	assert.Equal(t, int64(3), status.Remaining)
	assert.False(t, status.Done)

	// The queue drains again under the new provider identity.
	result, err := client.RunUntilDone(ctx, 10, core.WithDataset(id))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
}

func TestSearch_InvalidQuery(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.Search(ctx, "", 5)
	assert.ErrorIs(t, err, core.ErrInvalidQuery)

	_, err = client.Search(ctx, "   ", 5)
	assert.ErrorIs(t, err, core.ErrInvalidQuery)

	_, err = client.Search(ctx, "water", 0)
	assert.ErrorIs(t, err, core.ErrInvalidQuery)
}

func TestSearch_EmptyCorpus(t *testing.T) {
	client := newTestClient(t)

	matches, err := client.Search(context.Background(), "water lilies", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearch_KLargerThanCorpus(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	id := ingestGallery(t, client)
	_, err := client.RunUntilDone(ctx, 10, core.WithDataset(id))
	require.NoError(t, err)

	matches, err := client.Search(ctx, "painting", 50, core.WithDatasetFilter(id))
	require.NoError(t, err)
	assert.Len(t, matches, 3)

	// Scores are sorted descending.
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
}

func TestSearch_IgnoresUnembedded(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	id := ingestGallery(t, client)
	_, err := client.RunBatch(ctx, 2, core.WithDataset(id))
	require.NoError(t, err)

	matches, err := client.Search(ctx, "painting", 50, core.WithDatasetFilter(id))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	for _, m := range matches {
		assert.NotEqual(t, "The Scream", m.Object.Title)
	}
}

func TestSearch_VersionMismatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	oldClient := newTestClientWith(t, store, "token-hash-v1")
	id := ingestGallery(t, oldClient)
	_, err := oldClient.RunUntilDone(ctx, 10, core.WithDataset(id))
	require.NoError(t, err)

	// A client with a different provider identity must refuse to score the
	// old corpus.
	newClient := newTestClientWith(t, store, "token-hash-v2")
	_, err = newClient.Search(ctx, "water lilies", 5, core.WithDatasetFilter(id))
	assert.ErrorIs(t, err, core.ErrVersionMismatch)

	// Re-embedding under the new provider restores searchability.
	_, err = newClient.ReindexAll(ctx, core.WithDataset(id))
	require.NoError(t, err)
	_, err = newClient.RunUntilDone(ctx, 10, core.WithDataset(id))
	require.NoError(t, err)

	matches, err := newClient.Search(ctx, "water lilies", 1, core.WithDatasetFilter(id))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Water Lilies", matches[0].Object.Title)
}

func TestSearch_MinScore(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	id := ingestGallery(t, client)
	_, err := client.RunUntilDone(ctx, 10, core.WithDataset(id))
	require.NoError(t, err)

	// A threshold just under 1.0 keeps only near-identical matches.
	matches, err := client.Search(ctx, "Water Lilies Monet", 10,
		core.WithDatasetFilter(id),
		core.WithMinScore(0.9),
	)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Water Lilies", matches[0].Object.Title)
	assert.GreaterOrEqual(t, matches[0].Score, 0.9)
}

func TestSearch_DatasetFilter(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	id := ingestGallery(t, client)
	_, err := client.IngestDataset(ctx, &core.IngestRequest{
		DatasetID: "moma-1",
		Name:      "MoMA",
		Rows: []map[string]string{
			{"Object ID": "1", "Title": "Water Lilies Triptych", "Artist": "Monet"},
		},
	})
	require.NoError(t, err)

	_, err = client.RunUntilDone(ctx, 10)
	require.NoError(t, err)

	matches, err := client.Search(ctx, "water lilies", 10, core.WithDatasetFilter(id))
	require.NoError(t, err)
	for _, m := range matches {
		assert.Equal(t, id, m.Object.DatasetID)
	}

	all, err := client.Search(ctx, "water lilies", 10)
	require.NoError(t, err)
	assert.Greater(t, len(all), len(matches))
}

func TestBuildText(t *testing.T) {
	obj := &storage.Object{
		ID:     "met-1/1",
		Title:  "Water Lilies",
		Artist: "Claude Monet",
		Raw: map[string]string{
			"Medium":  "Oil on canvas",
			"Culture": "French",
		},
	}

	text := core.BuildText(obj)
	assert.Equal(t, "Water Lilies | Claude Monet | Oil on canvas | French", text)
}

func TestBuildText_FallsBackToID(t *testing.T) {
	obj := &storage.Object{ID: "met-1/42", Raw: map[string]string{}}
	assert.Equal(t, "met-1/42", core.BuildText(obj))
}

// failingEmbedder wraps the hash provider and fails on texts containing a
// marker token, to exercise skip-and-continue behavior.
type failingEmbedder struct {
	embedder.Provider
	marker string
}

func (f *failingEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.Contains(text, f.marker) {
		return nil, embedder.ErrZeroVector
	}
	return f.Provider.Embed(ctx, text)
}

func (f *failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func TestRunBatch_SkipsFailingObjects(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	hashProvider, err := hashEmbedder.NewClient(&hashEmbedder.Config{Dimensions: 128})
	require.NoError(t, err)

	client, err := core.NewClientWith(store, &failingEmbedder{
		Provider: hashProvider,
		marker:   "Starry",
	})
	require.NoError(t, err)

	id := ingestGallery(t, client)

	result, err := client.RunBatch(ctx, 10, core.WithDataset(id))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, int64(1), result.Remaining)

	// The loop terminates even though one object can never be embedded.
	total, err := client.RunUntilDone(ctx, 10, core.WithDataset(id))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total.Remaining)
}

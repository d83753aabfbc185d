package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artvector/artvector-go/pkg/core"
	hashEmbedder "github.com/artvector/artvector-go/pkg/embedder/hash"
	"github.com/artvector/artvector-go/pkg/server"
	sqliteStore "github.com/artvector/artvector-go/pkg/storage/sqlite"
)

func setupServer(t *testing.T) *server.Server {
	t.Helper()

	store, err := sqliteStore.NewClient(&sqliteStore.Config{
		DBPath: filepath.Join(t.TempDir(), "artvector_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	provider, err := hashEmbedder.NewClient(&hashEmbedder.Config{Dimensions: 128})
	require.NoError(t, err)

	client, err := core.NewClientWith(store, provider)
	require.NoError(t, err)

	return server.New(client, &server.Config{AppName: "artvector-test"})
}

func doJSON(t *testing.T, s *server.Server, req *http.Request, out interface{}) int {
	t.Helper()

	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, out), "body: %s", body)
	}
	return resp.StatusCode
}

func uploadCSV(t *testing.T, s *server.Server, csvData string) string {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "gallery.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvData))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("name", "Gallery"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload_dataset", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var ds struct {
		ID string `json:"dataset_id"`
	}
	status := doJSON(t, s, req, &ds)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, ds.ID)

	return ds.ID
}

const galleryCSV = `Object ID,Title,Artist
1,Water Lilies,Monet
2,Starry Night,Van Gogh
3,The Scream,Munch
`

func TestServer_Health(t *testing.T) {
	s := setupServer(t)

	var body map[string]string
	status := doJSON(t, s, httptest.NewRequest(http.MethodGet, "/health", nil), &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
}

func TestServer_UploadAndIndexFlow(t *testing.T) {
	s := setupServer(t)

	datasetID := uploadCSV(t, s, galleryCSV)

	// Two objects per batch: first pass leaves one remaining.
	reqBody := []byte(`{"dataset_id":"` + datasetID + `","batch_size":2}`)
	req := httptest.NewRequest(http.MethodPost, "/process_batch", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	var batch struct {
		Processed int   `json:"processed"`
		Remaining int64 `json:"remaining"`
	}
	status := doJSON(t, s, req, &batch)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, batch.Processed)
	assert.Equal(t, int64(1), batch.Remaining)

	// process_all drains the rest.
	req = httptest.NewRequest(http.MethodPost, "/process_all", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	status = doJSON(t, s, req, &batch)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(0), batch.Remaining)

	var idx struct {
		Total     int64 `json:"total"`
		Embedded  int64 `json:"embedded"`
		Remaining int64 `json:"remaining"`
		Done      bool  `json:"done"`
	}
	status = doJSON(t, s, httptest.NewRequest(http.MethodGet, "/index_status?dataset_id="+datasetID, nil), &idx)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(3), idx.Total)
	assert.Equal(t, int64(3), idx.Embedded)
	assert.True(t, idx.Done)

	var search struct {
		Count   int `json:"count"`
		Matches []struct {
			Score  float64 `json:"score"`
			Object struct {
				Title string `json:"title"`
			} `json:"obj"`
		} `json:"matches"`
	}
	status = doJSON(t, s, httptest.NewRequest(http.MethodGet,
		"/search_text?query=water+lilies+garden&k=1&dataset_id="+datasetID, nil), &search)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, search.Count)
	assert.Equal(t, "Water Lilies", search.Matches[0].Object.Title)
}

func TestServer_SearchText_MissingQuery(t *testing.T) {
	s := setupServer(t)

	var body map[string]string
	status := doJSON(t, s, httptest.NewRequest(http.MethodGet, "/search_text?k=5", nil), &body)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "invalid query")
}

func TestServer_UploadDataset_MissingFile(t *testing.T) {
	s := setupServer(t)

	req := httptest.NewRequest(http.MethodPost, "/upload_dataset", nil)
	status := doJSON(t, s, req, nil)

	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_AllDatasetsAndObjects(t *testing.T) {
	s := setupServer(t)

	datasetID := uploadCSV(t, s, galleryCSV)

	var datasets struct {
		Count int `json:"count"`
	}
	status := doJSON(t, s, httptest.NewRequest(http.MethodGet, "/all_datasets", nil), &datasets)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, datasets.Count)

	var objects struct {
		Count int `json:"count"`
	}
	status = doJSON(t, s, httptest.NewRequest(http.MethodGet,
		"/all_objects?dataset_id="+datasetID+"&limit=2", nil), &objects)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, objects.Count)
}

package ingest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artvector/artvector-go/pkg/ingest"
)

func TestParseCSV(t *testing.T) {
	csvData := strings.Join([]string{
		"Object ID,Title,Artist Display Name,Primary Image",
		`1,Water Lilies,Claude Monet,https://example.org/lilies.jpg`,
		`2,Starry Night,Vincent van Gogh,`,
	}, "\n")

	result, err := ingest.ParseCSV(strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, []string{"Object ID", "Title", "Artist Display Name", "Primary Image"}, result.Fields)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "Water Lilies", result.Rows[0]["Title"])
	assert.Equal(t, "", result.Rows[1]["Primary Image"])
}

func TestParseCSV_SkipsRaggedAndEmptyRows(t *testing.T) {
	csvData := strings.Join([]string{
		"Object ID,Title",
		"1,First",
		"2,Second,extra-column",
		",",
		"3,Third",
	}, "\n")

	result, err := ingest.ParseCSV(strings.NewReader(csvData))
	require.NoError(t, err)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, "First", result.Rows[0]["Title"])
	assert.Equal(t, "Third", result.Rows[1]["Title"])
}

func TestParseCSV_EmptyFile(t *testing.T) {
	_, err := ingest.ParseCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestBuildObject(t *testing.T) {
	row := map[string]string{
		"Object ID":           "436535",
		"Title":               "Wheat Field with Cypresses",
		"Artist Display Name": "Vincent van Gogh",
		"Primary Image":       "https://example.org/wheat.jpg",
		"Medium":              "Oil on canvas",
	}

	obj := ingest.BuildObject("met-1", 0, row)

	assert.Equal(t, "met-1/436535", obj.ID)
	assert.Equal(t, "met-1", obj.DatasetID)
	assert.Equal(t, "436535", obj.SourceID)
	assert.Equal(t, "Wheat Field with Cypresses", obj.Title)
	assert.Equal(t, "Vincent van Gogh", obj.Artist)
	assert.Equal(t, "https://example.org/wheat.jpg", obj.ImageURL)
	assert.True(t, obj.HasImage)
	assert.Equal(t, "Oil on canvas", obj.Raw["Medium"])
	assert.False(t, obj.Embedded())
}

func TestBuildObject_FallbackSourceID(t *testing.T) {
	obj := ingest.BuildObject("met-1", 4, map[string]string{"Title": "Untitled"})

	assert.Equal(t, "row-000005", obj.SourceID)
	assert.Equal(t, "met-1/row-000005", obj.ID)
	assert.False(t, obj.HasImage)
}

func TestBuildObjects_IdentifierOrderMatchesIngestOrder(t *testing.T) {
	rows := []map[string]string{
		{"Title": "First"},
		{"Title": "Second"},
		{"Title": "Third"},
	}

	objects := ingest.BuildObjects("ds", rows)
	require.Len(t, objects, 3)

	for i := 1; i < len(objects); i++ {
		assert.Less(t, objects[i-1].ID, objects[i].ID)
	}
}

func TestLookup_HeaderVariants(t *testing.T) {
	row := map[string]string{
		"object_number": "n-42",
		"Creator":       "Rembrandt",
	}

	assert.Equal(t, "n-42", ingest.Lookup(row, []string{"objectid", "id", "objectnumber"}))
	assert.Equal(t, "Rembrandt", ingest.Lookup(row, []string{"artistdisplayname", "artist", "creator"}))
	assert.Equal(t, "", ingest.Lookup(row, []string{"medium"}))
}

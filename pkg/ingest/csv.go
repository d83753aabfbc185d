// Package ingest parses tabular source files into unembedded objects.
//
// Ingestion is schema-agnostic: the full original row is preserved verbatim
// as the object's opaque raw blob, and only a handful of display fields
// (identifier, title, artist, image reference) are extracted by flexible
// header matching so that differently shaped CSVs all ingest cleanly.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/artvector/artvector-go/pkg/storage"
)

// Result holds a parsed source file.
type Result struct {
	// Fields is the ordered list of header names as they appeared.
	Fields []string

	// Rows are the source rows, one ordered field-name-to-value mapping each.
	Rows []map[string]string
}

// Header candidates for extracted display fields, in priority order.
// Matching is done on canonicalized names (lowercased, alphanumeric only).
var (
	sourceIDKeys = []string{"objectid", "id", "objectnumber", "accessionnumber"}
	titleKeys    = []string{"title", "objecttitle", "name"}
	artistKeys   = []string{"artistdisplayname", "artist", "creator", "maker"}
	imageKeys    = []string{"primaryimage", "primaryimagesmall", "imageurl", "image", "thumbnail"}
)

// ParseCSV reads a CSV stream into rows keyed by their header names.
//
// Rows with a column count differing from the header are skipped rather than
// failing the whole upload; completely empty rows are dropped.
func ParseCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, validated below

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("parse csv: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	fields := make([]string, len(header))
	for i, h := range header {
		fields[i] = strings.TrimSpace(h)
	}

	result := &Result{Fields: fields}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if len(record) != len(fields) {
			continue
		}

		row := make(map[string]string, len(fields))
		empty := true
		for i, value := range record {
			value = strings.TrimSpace(value)
			row[fields[i]] = value
			if value != "" {
				empty = false
			}
		}
		if empty {
			continue
		}

		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

// BuildObjects converts parsed rows into unembedded objects for a dataset.
//
// Object IDs combine the dataset ID with the source-provided identifier;
// rows without one get a zero-padded row number so that identifier order
// matches ingest order.
func BuildObjects(datasetID string, rows []map[string]string) []*storage.Object {
	objects := make([]*storage.Object, 0, len(rows))
	for i, row := range rows {
		objects = append(objects, BuildObject(datasetID, i, row))
	}
	return objects
}

// BuildObject converts one source row into an unembedded object.
func BuildObject(datasetID string, rowIndex int, row map[string]string) *storage.Object {
	sourceID := lookup(row, sourceIDKeys)
	if sourceID == "" {
		sourceID = fmt.Sprintf("row-%06d", rowIndex+1)
	}

	imageURL := lookup(row, imageKeys)

	return &storage.Object{
		ID:        datasetID + "/" + sourceID,
		DatasetID: datasetID,
		SourceID:  sourceID,
		Title:     lookup(row, titleKeys),
		Artist:    lookup(row, artistKeys),
		ImageURL:  imageURL,
		HasImage:  imageURL != "",
		Raw:       row,
	}
}

// Lookup finds the first non-empty value in row whose canonicalized header
// matches one of the candidate keys, in candidate priority order.
func Lookup(row map[string]string, candidates []string) string {
	return lookup(row, candidates)
}

func lookup(row map[string]string, candidates []string) string {
	for _, want := range candidates {
		for key, value := range row {
			if value != "" && canonical(key) == want {
				return value
			}
		}
	}
	return ""
}

// canonical lowercases a header name and strips non-alphanumeric runes.
func canonical(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(key) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

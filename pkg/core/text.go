package core

import (
	"strings"

	"github.com/artvector/artvector-go/pkg/ingest"
	"github.com/artvector/artvector-go/pkg/storage"
)

// textFieldKeys orders the raw metadata fields folded into an object's
// search text, after title and artist. Candidates within one slice are
// header spelling variants; the first present wins.
var textFieldKeys = [][]string{
	{"medium", "material", "technique"},
	{"culture", "nationality"},
	{"objectname", "classification", "objecttype", "type"},
	{"period", "dynasty"},
	{"objectdate", "date", "dated"},
	{"department", "collection"},
	{"description"},
}

// textSeparator joins the object's text fields.
const textSeparator = " | "

// BuildText derives the string that represents an object for embedding.
//
// It concatenates a fixed, ordered subset of the object's fields (title,
// artist, then medium, culture, classification, period, date, department,
// description drawn from the preserved source row), skipping absent values.
// If every field is absent it falls back to the object's identifier, so the
// embedding provider never receives empty text.
func BuildText(obj *storage.Object) string {
	var parts []string

	if v := strings.TrimSpace(obj.Title); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(obj.Artist); v != "" {
		parts = append(parts, v)
	}
	for _, candidates := range textFieldKeys {
		if v := strings.TrimSpace(ingest.Lookup(obj.Raw, candidates)); v != "" {
			parts = append(parts, v)
		}
	}

	if len(parts) == 0 {
		return obj.ID
	}
	return strings.Join(parts, textSeparator)
}

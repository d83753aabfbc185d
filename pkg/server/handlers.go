package server

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/artvector/artvector-go/pkg/core"
	"github.com/artvector/artvector-go/pkg/ingest"
)

// UploadDataset ingests a CSV file as a new dataset.
//
// Multipart form fields:
//   - file: the CSV upload (required)
//   - name: display name (defaults to the file name)
//   - source_type: origin tag (defaults to "csv")
func (s *Server) UploadDataset(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing file"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable file"})
	}
	defer func() { _ = file.Close() }()

	parsed, err := ingest.ParseCSV(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		name = fileHeader.Filename
	}
	sourceType := strings.TrimSpace(c.FormValue("source_type"))
	if sourceType == "" {
		sourceType = "csv"
	}

	ds, err := s.client.IngestDataset(c.Context(), &core.IngestRequest{
		Name:       name,
		SourceType: sourceType,
		Filename:   fileHeader.Filename,
		Fields:     parsed.Fields,
		Rows:       parsed.Rows,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ds)
}

// indexRequest is the body shared by ProcessBatch and ProcessAll.
type indexRequest struct {
	DatasetID string `json:"dataset_id"`
	BatchSize int    `json:"batch_size"`
}

// indexOptions converts the request's dataset scope into client options.
func (r *indexRequest) indexOptions() []core.IndexOption {
	if r.DatasetID == "" {
		return nil
	}
	return []core.IndexOption{core.WithDataset(r.DatasetID)}
}

// ProcessBatch drains one indexing batch.
func (s *Server) ProcessBatch(c fiber.Ctx) error {
	var body indexRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
	}
	if body.BatchSize == 0 {
		body.BatchSize = s.cfg.BatchSize
	}

	result, err := s.client.RunBatch(c.Context(), body.BatchSize, body.indexOptions()...)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// ProcessAll drains the unembedded queue completely.
func (s *Server) ProcessAll(c fiber.Ctx) error {
	var body indexRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
	}
	if body.BatchSize == 0 {
		body.BatchSize = s.cfg.BatchSize
	}

	result, err := s.client.RunUntilDone(c.Context(), body.BatchSize, body.indexOptions()...)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// IndexStatus reports indexing progress, optionally scoped by ?dataset_id=.
func (s *Server) IndexStatus(c fiber.Ctx) error {
	var opts []core.StatusOption
	if id := c.Query("dataset_id"); id != "" {
		opts = append(opts, core.WithDatasetForStatus(id))
	}

	status, err := s.client.Status(c.Context(), opts...)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(status)
}

// SearchText answers a free-text similarity query.
//
// Query params: query (required), k (default 10), dataset_id, images_only,
// min_score.
func (s *Server) SearchText(c fiber.Ctx) error {
	query := c.Query("query")
	k := queryInt(c, "k", 10)

	opts := []core.SearchOption{}
	if id := c.Query("dataset_id"); id != "" {
		opts = append(opts, core.WithDatasetFilter(id))
	}
	if c.Query("images_only") == "true" {
		opts = append(opts, core.WithImagesOnly(true))
	}
	if v := c.Query("min_score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid min_score"})
		}
		opts = append(opts, core.WithMinScore(score))
	}

	matches, err := s.client.Search(c.Context(), query, k, opts...)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"matches": matches, "count": len(matches)})
}

// AllDatasets lists every registered dataset.
func (s *Server) AllDatasets(c fiber.Ctx) error {
	datasets, err := s.client.Datasets(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"datasets": datasets, "count": len(datasets)})
}

// AllObjects lists objects with optional dataset scope and pagination.
//
// Query params: dataset_id, limit (default 100), offset.
func (s *Server) AllObjects(c fiber.Ctx) error {
	opts := []core.ListOption{
		core.WithLimit(queryInt(c, "limit", 100)),
		core.WithOffset(queryInt(c, "offset", 0)),
	}
	if id := c.Query("dataset_id"); id != "" {
		opts = append(opts, core.WithDatasetForList(id))
	}

	objects, err := s.client.Objects(c.Context(), opts...)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"objects": objects, "count": len(objects)})
}

// queryInt reads an integer query param with a default value.
func queryInt(c fiber.Ctx, key string, defaultVal int) int {
	v := c.Query(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

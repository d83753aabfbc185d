// Package server exposes the ArtVector client over HTTP.
//
// It is a thin glue layer: every route maps onto one client operation
// (ingestion, batch indexing, search, status, listing) and translates the
// engine's error kinds into HTTP status codes.
package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/artvector/artvector-go/pkg/core"
)

// Config contains HTTP server settings.
type Config struct {
	// Port is the TCP port to listen on.
	Port string

	// AppName is reported in the health endpoint.
	AppName string

	// AllowOrigins lists CORS origins; empty means allow all.
	AllowOrigins []string

	// BatchSize is the indexing batch size used when a request omits one.
	BatchSize int
}

// Server wraps a fiber app bound to one ArtVector client.
type Server struct {
	app    *fiber.App
	client *core.Client
	cfg    *Config
}

// New builds the fiber app and registers all routes.
func New(client *core.Client, cfg *Config) *Server {
	if cfg.AppName == "" {
		cfg.AppName = "artvector"
	}
	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = core.DefaultBatchSize
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	corsConfig := cors.Config{
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}
	if len(cfg.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	}
	app.Use(cors.New(corsConfig))

	s := &Server{app: app, client: client, cfg: cfg}

	app.Get("/health", s.Health)
	app.Post("/upload_dataset", s.UploadDataset)
	app.Post("/process_batch", s.ProcessBatch)
	app.Post("/process_all", s.ProcessAll)
	app.Get("/index_status", s.IndexStatus)
	app.Get("/search_text", s.SearchText)
	app.Get("/all_datasets", s.AllDatasets)
	app.Get("/all_objects", s.AllObjects)

	return s
}

// Listen starts serving; it blocks until the server stops.
func (s *Server) Listen() error {
	slog.Info("listening", "port", s.cfg.Port)
	return s.app.Listen(":" + s.cfg.Port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the underlying fiber app (used by tests).
func (s *Server) App() *fiber.App {
	return s.app
}

// Health reports liveness.
func (s *Server) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"app":    s.cfg.AppName,
	})
}

// fail translates engine error kinds into HTTP status codes.
func fail(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrInvalidQuery), errors.Is(err, core.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, core.ErrVersionMismatch):
		status = fiber.StatusConflict
	case errors.Is(err, core.ErrEmbeddingFailed):
		status = fiber.StatusUnprocessableEntity
	}

	if status == fiber.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

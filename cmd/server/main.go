package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/artvector/artvector-go/pkg/core"
	"github.com/artvector/artvector-go/pkg/server"
)

func main() {
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	cfg, err := core.LoadConfigFromEnv()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("starting artvector",
		"storage", cfg.Storage.Provider,
		"embedder", cfg.Embedder.Provider,
		"model", cfg.Embedder.Model,
		"dims", cfg.Embedder.Dimensions,
	)

	client, err := core.NewClient(cfg)
	if err != nil {
		slog.Error("failed to initialize client", "error", err)
		os.Exit(1)
	}
	defer func() { _ = client.Close() }()

	var origins []string
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}
	batchSize, _ := strconv.Atoi(os.Getenv("INDEX_BATCH_SIZE"))

	srv := server.New(client, &server.Config{
		Port:         envOrDefault("PORT", "8000"),
		AppName:      "artvector",
		AllowOrigins: origins,
		BatchSize:    batchSize,
	})

	if err := srv.Listen(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

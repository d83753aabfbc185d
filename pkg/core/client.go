package core

import (
	"github.com/bwmarrin/snowflake"

	"github.com/artvector/artvector-go/pkg/embedder"
	hashEmbedder "github.com/artvector/artvector-go/pkg/embedder/hash"
	ollamaEmbedder "github.com/artvector/artvector-go/pkg/embedder/ollama"
	openaiEmbedder "github.com/artvector/artvector-go/pkg/embedder/openai"
	"github.com/artvector/artvector-go/pkg/storage"
	mysqlStore "github.com/artvector/artvector-go/pkg/storage/mysql"
	postgresStore "github.com/artvector/artvector-go/pkg/storage/postgres"
	sqliteStore "github.com/artvector/artvector-go/pkg/storage/sqlite"
)

// Client is the main ArtVector client for semantic retrieval over
// cultural-heritage object metadata.
//
// It provides a complete interface for:
//   - Dataset ingestion (raw source rows become unembedded objects)
//   - Progressive batch indexing (claiming and embedding unembedded objects)
//   - Cosine similarity search over embedded objects
//   - Index status reporting
//
// The client is safe for concurrent use: batch claims are serialized through
// the object store's compare-and-set embedding writes, so two clients sharing
// one database never embed the same object twice.
//
// Example usage:
//
//	config, _ := core.LoadConfigFromEnv()
//	client, _ := core.NewClient(config)
//	defer client.Close()
//
//	status, _ := client.Status(ctx)
//	for !status.Done {
//	    client.RunBatch(ctx, 50)
//	    status, _ = client.Status(ctx)
//	}
type Client struct {
	// config contains the client configuration.
	config *Config

	// storage is the object store for metadata and vector persistence.
	storage storage.ObjectStore

	// embedder is the embedding provider for vector generation.
	embedder embedder.Provider

	// snowflakeNode generates unique dataset IDs.
	snowflakeNode *snowflake.Node
}

// NewClient creates a new ArtVector client.
//
// The client is initialized with:
//   - Object store (SQLite, PostgreSQL, or MySQL)
//   - Embedding provider (hash, Ollama, or OpenAI)
//
// Parameters:
//   - cfg: Configuration containing storage and embedding settings
//
// Returns a new Client instance, or an error if initialization fails.
//
// Example:
//
//	config := &core.Config{
//	    Storage:  core.StorageConfig{Provider: "sqlite", Config: map[string]interface{}{"db_path": "./artvector.db"}},
//	    Embedder: core.EmbedderConfig{Provider: "hash", Dimensions: 384},
//	}
//	client, err := core.NewClient(config)
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := initStorage(cfg.Storage)
	if err != nil {
		return nil, err
	}

	embedderProvider, err := initEmbedder(cfg.Embedder)
	if err != nil {
		return nil, err
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, NewEngineError("NewClient", err)
	}

	return &Client{
		config:        cfg,
		storage:       store,
		embedder:      embedderProvider,
		snowflakeNode: node,
	}, nil
}

// NewClientWith creates a client from pre-built storage and embedder
// instances, bypassing configuration-driven initialization.
//
// Useful for tests and for callers that construct their own providers.
func NewClientWith(store storage.ObjectStore, provider embedder.Provider) (*Client, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, NewEngineError("NewClientWith", err)
	}

	return &Client{
		config: &Config{
			Indexer: IndexerConfig{BatchSize: DefaultBatchSize},
		},
		storage:       store,
		embedder:      provider,
		snowflakeNode: node,
	}, nil
}

// Close releases resources held by the client.
//
// Example:
//
//	defer client.Close()
func (c *Client) Close() error {
	var errs []error

	if c.storage != nil {
		if err := c.storage.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if c.embedder != nil {
		if err := c.embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0] // Return the first error
	}

	return nil
}

// initStorage initializes the storage backend.
func initStorage(cfg StorageConfig) (storage.ObjectStore, error) {
	switch cfg.Provider {
	case "sqlite":
		return sqliteStore.NewClient(&sqliteStore.Config{
			DBPath: cfg.Config["db_path"].(string),
		})
	case "postgres":
		sslMode := "disable"
		if s, ok := cfg.Config["ssl_mode"].(string); ok {
			sslMode = s
		}
		return postgresStore.NewClient(&postgresStore.Config{
			Host:               cfg.Config["host"].(string),
			Port:               cfg.Config["port"].(int),
			User:               cfg.Config["user"].(string),
			Password:           cfg.Config["password"].(string),
			DBName:             cfg.Config["db_name"].(string),
			EmbeddingModelDims: cfg.Config["embedding_model_dims"].(int),
			SSLMode:            sslMode,
		})
	case "mysql":
		return mysqlStore.NewClient(&mysqlStore.Config{
			Host:     cfg.Config["host"].(string),
			Port:     cfg.Config["port"].(int),
			User:     cfg.Config["user"].(string),
			Password: cfg.Config["password"].(string),
			DBName:   cfg.Config["db_name"].(string),
		})
	default:
		return nil, NewEngineError("initStorage", ErrInvalidConfig)
	}
}

// initEmbedder initializes the embedder provider.
func initEmbedder(cfg EmbedderConfig) (embedder.Provider, error) {
	switch cfg.Provider {
	case "hash":
		return hashEmbedder.NewClient(&hashEmbedder.Config{
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	case "ollama":
		return ollamaEmbedder.NewClient(&ollamaEmbedder.Config{
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Dimensions: cfg.Dimensions,
		})
	case "openai":
		return openaiEmbedder.NewClient(&openaiEmbedder.Config{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Dimensions: cfg.Dimensions,
		})
	default:
		return nil, NewEngineError("initEmbedder", ErrInvalidConfig)
	}
}

package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config contains the complete configuration for an ArtVector client.
//
// It includes settings for:
//   - Embedding provider (for vector generation)
//   - Object store (for metadata and vector persistence)
//   - Indexer (batch sizing)
//
// Example:
//
//	config := &core.Config{
//	    Embedder: core.EmbedderConfig{
//	        Provider:   "hash",
//	        Dimensions: 384,
//	    },
//	    Storage: core.StorageConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path": "./artvector.db",
//	        },
//	    },
//	}
type Config struct {
	// Embedder contains embedding provider configuration.
	Embedder EmbedderConfig `json:"embedder"`

	// Storage contains object store configuration.
	Storage StorageConfig `json:"storage"`

	// Indexer contains batch indexing configuration.
	Indexer IndexerConfig `json:"indexer"`
}

// EmbedderConfig contains configuration for the embedding provider.
//
// Supported providers: hash, ollama, openai
type EmbedderConfig struct {
	// Provider is the embedding provider name (hash, ollama, openai).
	Provider string `json:"provider"`

	// APIKey is the API key for hosted providers.
	APIKey string `json:"api_key"`

	// Model is the embedding model name.
	Model string `json:"model"`

	// BaseURL is a custom API endpoint (optional).
	BaseURL string `json:"base_url"`

	// Dimensions is the expected embedding dimensionality.
	Dimensions int `json:"dimensions"`
}

// StorageConfig contains configuration for the object store.
//
// Supported providers: sqlite, postgres, mysql
type StorageConfig struct {
	// Provider is the storage backend name (sqlite, postgres, mysql).
	Provider string `json:"provider"`

	// Config contains provider-specific settings.
	Config map[string]interface{} `json:"config"`
}

// IndexerConfig contains batch indexing configuration.
type IndexerConfig struct {
	// BatchSize is the default number of objects claimed per indexing pass.
	BatchSize int `json:"batch_size"`
}

// DefaultBatchSize is the indexing batch size used when none is configured.
const DefaultBatchSize = 50

// LoadConfigFromEnv loads configuration from environment variables.
//
// The loading process:
//  1. Searches for a .env file (current directory, then up to 5 levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - DATABASE_PROVIDER (sqlite, postgres, mysql)
//   - SQLITE_PATH
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD, etc.
//   - MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD, MYSQL_DATABASE
//   - EMBEDDING_PROVIDER, EMBEDDING_API_KEY, EMBEDDING_MODEL, EMBEDDING_BASE_URL
//   - EMBEDDING_DIMS
//   - INDEX_BATCH_SIZE
//
// Returns a Config instance, or an error if loading fails.
//
// Example:
//
//	config, err := core.LoadConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadConfigFromEnv() (*Config, error) {
	envPath, found := FindEnvFile()
	if found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	provider := getEnvOrDefault("DATABASE_PROVIDER", "sqlite")

	storageConfig := make(map[string]interface{})

	switch provider {
	case "sqlite":
		storageConfig = map[string]interface{}{
			"db_path": getEnvOrDefault("SQLITE_PATH", "./artvector.db"),
		}
	case "postgres":
		port, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))
		dims, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_EMBEDDING_MODEL_DIMS", "384"))

		storageConfig = map[string]interface{}{
			"host":                 getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":                 port,
			"user":                 getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password":             os.Getenv("POSTGRES_PASSWORD"),
			"db_name":              getEnvOrDefault("POSTGRES_DATABASE", "artvector"),
			"embedding_model_dims": dims,
			"ssl_mode":             getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "mysql":
		port, _ := strconv.Atoi(getEnvOrDefault("MYSQL_PORT", "3306"))

		storageConfig = map[string]interface{}{
			"host":     getEnvOrDefault("MYSQL_HOST", "127.0.0.1"),
			"port":     port,
			"user":     getEnvOrDefault("MYSQL_USER", "root"),
			"password": os.Getenv("MYSQL_PASSWORD"),
			"db_name":  getEnvOrDefault("MYSQL_DATABASE", "artvector"),
		}
	}

	embedderProvider := getEnvOrDefault("EMBEDDING_PROVIDER", "hash")
	embedderAPIKey := os.Getenv("EMBEDDING_API_KEY")
	embedderModel := os.Getenv("EMBEDDING_MODEL")
	embedderDims, _ := strconv.Atoi(getEnvOrDefault("EMBEDDING_DIMS", "0"))

	// Set default base URL and model based on provider
	var embedderBaseURL string
	switch embedderProvider {
	case "ollama":
		embedderBaseURL = os.Getenv("OLLAMA_EMBEDDING_BASE_URL")
		if embedderBaseURL == "" {
			embedderBaseURL = "http://localhost:11434"
		}
		if embedderModel == "" {
			embedderModel = "all-minilm"
		}
		if embedderDims == 0 {
			embedderDims = 384
		}
	case "openai":
		embedderBaseURL = os.Getenv("OPENAI_EMBEDDING_BASE_URL")
		if embedderBaseURL == "" {
			embedderBaseURL = "https://api.openai.com/v1"
		}
		if embedderModel == "" {
			embedderModel = "text-embedding-3-small"
		}
		if embedderDims == 0 {
			embedderDims = 1536
		}
	default:
		embedderBaseURL = os.Getenv("EMBEDDING_BASE_URL")
		if embedderModel == "" {
			embedderModel = "token-hash-v1"
		}
		if embedderDims == 0 {
			embedderDims = 384
		}
	}

	batchSize, _ := strconv.Atoi(getEnvOrDefault("INDEX_BATCH_SIZE", strconv.Itoa(DefaultBatchSize)))

	config := &Config{
		Embedder: EmbedderConfig{
			Provider:   embedderProvider,
			APIKey:     embedderAPIKey,
			Model:      embedderModel,
			BaseURL:    embedderBaseURL,
			Dimensions: embedderDims,
		},
		Storage: StorageConfig{
			Provider: provider,
			Config:   storageConfig,
		},
		Indexer: IndexerConfig{
			BatchSize: batchSize,
		},
	}

	return config, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
//
// Parameters:
//   - envPath: Path to the .env file
//
// Returns a Config instance, or an error if loading fails.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
//
// Parameters:
//   - path: Path to the JSON configuration file
//
// Returns a Config instance, or an error if loading or parsing fails.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewEngineError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewEngineError("LoadConfigFromJSON", err)
	}

	return &config, nil
}

// Validate validates the configuration.
//
// Checks that all required fields are set:
//   - Embedder provider must be specified
//   - Storage provider must be specified
//   - Indexer batch size must not be negative
//
// Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.Embedder.Provider == "" {
		return NewEngineError("Validate", ErrInvalidConfig)
	}
	if c.Storage.Provider == "" {
		return NewEngineError("Validate", ErrInvalidConfig)
	}
	if c.Indexer.BatchSize < 0 {
		return NewEngineError("Validate", ErrInvalidConfig)
	}
	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FindEnvFile searches for .env or .env.example files.
//
// The search:
//  1. Checks the current directory
//  2. Searches up to 5 directory levels up
//  3. Returns the first .env or .env.example file found
//
// Returns:
//   - path: Path to the found file (empty if not found)
//   - found: True if a file was found, false otherwise
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}

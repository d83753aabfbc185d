// Package ollama provides an embedding provider backed by a local Ollama
// server.
//
// Ollama runs the model on the same host, so embedding calls stay off the
// public network and complete in bounded time per item. This package
// implements the embedder.Provider interface against the /api/embed endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/artvector/artvector-go/pkg/embedder"
)

// Client implements embedder.Provider using the Ollama REST API.
type Client struct {
	// client is the HTTP client for API requests.
	client *http.Client

	// model is the embedding model name to use.
	model string

	// baseURL is the base URL of the Ollama server.
	baseURL string

	// dimensions is the dimension of embedding vectors.
	dimensions int
}

// Config contains configuration for creating an Ollama embedder client.
type Config struct {
	// Model is the model name to use (default: "all-minilm").
	Model string

	// BaseURL is the Ollama server address (default: "http://localhost:11434").
	BaseURL string

	// Dimensions is the vector dimension (default: 384 for all-minilm).
	Dimensions int

	// HTTPClient is a custom HTTP client (uses default if nil).
	HTTPClient *http.Client
}

// NewClient creates a new Ollama embedder client.
//
// Parameters:
//   - cfg: Configuration containing Model, BaseURL, Dimensions, etc.
//
// Returns:
//   - *Client: Ollama embedder client instance
//   - error: Error if initialization fails
func NewClient(cfg *Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	model := cfg.Model
	if model == "" {
		model = "all-minilm"
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = 384 // all-minilm default dimension
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	return &Client{
		client:     client,
		model:      model,
		baseURL:    baseURL,
		dimensions: dimensions,
	}, nil
}

// Embed converts a single text string into a unit-normalized vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, embedder.ErrEmptyText
	}

	embeddings, err := c.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if len(embeddings) == 0 {
		return nil, errors.New("embedding generation failed: no embeddings returned from Ollama")
	}

	vec := embeddings[0]
	if err := embedder.Normalize(vec); err != nil {
		return nil, err
	}

	return vec, nil
}

// EmbedBatch converts multiple text strings into vectors in one request.
//
// Order matches the input texts.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	embeddings, err := c.embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding generation failed: unexpected number of results from Ollama (got %d, expected %d)", len(embeddings), len(texts))
	}

	for i := range embeddings {
		if err := embedder.Normalize(embeddings[i]); err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
	}

	return embeddings, nil
}

// embed posts to /api/embed; input may be a single string or a string slice.
func (c *Client) embed(ctx context.Context, input interface{}) ([][]float64, error) {
	reqBody := map[string]interface{}{
		"model": c.model,
		"input": input,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/api/embed"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Embeddings [][]float64 `json:"embeddings"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return response.Embeddings, nil
}

// Dimensions returns the dimension of embedding vectors produced by this
// provider.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// Name returns the provider identity (the model name).
func (c *Client) Name() string {
	return c.model
}

// Close closes the client connection.
//
// HTTP clients do not need explicit closing; this method is retained for
// interface compatibility.
func (c *Client) Close() error {
	return nil
}

// Package llamacpp provides an HTTP client for a llama.cpp inference server
// running a multilingual sentence-embedding model. The recommender uses it to
// encode corpus texts at build time and user queries at request time.
package llamacpp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Config holds llama.cpp server configuration.
type Config struct {
	EmbedURL     string        // Text embedding endpoint
	ModelID      string        // Model identifier sent with each request
	Timeout      time.Duration // Request timeout
	MaxRetries   int           // Max retry attempts
	RetryBackoff time.Duration // Initial backoff between retries
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		EmbedURL:     "http://localhost:8082/embed/text",
		Timeout:      2 * time.Minute,
		MaxRetries:   3,
		RetryBackoff: 2 * time.Second,
	}
}

// EmbedRequest is the payload of the batch text embedding endpoint.
type EmbedRequest struct {
	Texts   []string `json:"texts"`
	ModelID string   `json:"model_id,omitempty"`
}

// EmbedResponse is the reply of the batch text embedding endpoint.
type EmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	ModelID    string      `json:"model_id"`
	Dimension  int         `json:"dimension"`
	Error      string      `json:"error,omitempty"`
}

// Client communicates with a llama.cpp server for text embedding inference.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new llama.cpp client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	def := DefaultConfig()
	if cfg.EmbedURL == "" {
		cfg.EmbedURL = def.EmbedURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = def.RetryBackoff
	}

	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With().Str("component", "llamacpp").Logger(),
	}
}

// HealthCheck verifies the llama.cpp server is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.EmbedURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("llama.cpp health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("llama.cpp server unhealthy: %s", resp.Status)
	}

	return nil
}

// EmbedTexts generates embeddings for a batch of texts in one request.
// The result is index-aligned with the input. An empty input returns an
// empty (non-nil) matrix without touching the network.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	payload := EmbedRequest{
		Texts:   texts,
		ModelID: c.config.ModelID,
	}

	var response EmbedResponse
	if err := c.sendRequest(ctx, c.config.EmbedURL, payload, &response); err != nil {
		return nil, err
	}
	if response.Error != "" {
		return nil, fmt.Errorf("llama.cpp embedding error: %s", response.Error)
	}
	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors",
			len(texts), len(response.Embeddings))
	}

	c.logger.Debug().
		Int("texts", len(texts)).
		Int("dimension", response.Dimension).
		Str("model", response.ModelID).
		Msg("batch embedded")

	return response.Embeddings, nil
}

// EmbedText generates an embedding for a single text.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float64, error) {
	vectors, err := c.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no result from text embedding")
	}
	return vectors[0], nil
}

// sendRequest sends a JSON request and decodes the response, retrying server
// errors with exponential backoff.
func (c *Client) sendRequest(ctx context.Context, url string, payload any, response any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.config.RetryBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %s", resp.Status)
			continue
		}

		if resp.StatusCode >= 400 {
			return fmt.Errorf("client error: %s - %s", resp.Status, string(body))
		}

		if err := json.Unmarshal(body, response); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}

		return nil
	}

	return fmt.Errorf("all retries failed: %w", lastErr)
}

// Package genai integrates an optional chat-completion model (an
// Ollama-style local endpoint) for two best-effort tasks: enriching short
// user texts before they reach the embedding index, and generating the
// narrative recommendation report. Both are off the critical ranking path:
// any failure here must leave the core result intact.
package genai

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Config holds the generative model endpoint configuration.
type Config struct {
	BaseURL               string        // Chat endpoint base URL
	Model                 string        // Model name
	MinWordsForEnrichment int           // Texts at or above this length skip enrichment
	Timeout               time.Duration // Request timeout
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:               "http://localhost:11434",
		Model:                 "llama3.1:8b",
		MinWordsForEnrichment: 5,
		Timeout:               30 * time.Second,
	}
}

// Client talks to the chat-completion endpoint.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a genai Client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MinWordsForEnrichment <= 0 {
		cfg.MinWordsForEnrichment = def.MinWordsForEnrichment
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With().Str("component", "genai").Logger(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// complete sends one system+user exchange and returns the reply text.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	payload := chatRequest{
		Model:  c.config.Model,
		Stream: false,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("genai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("genai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("genai: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("genai: unexpected status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("genai: decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("genai: %s", parsed.Error)
	}

	reply := strings.TrimSpace(parsed.Message.Content)
	if reply == "" {
		return "", fmt.Errorf("genai: empty response")
	}
	return reply, nil
}

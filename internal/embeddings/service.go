// Package embeddings provides the external embedding capability.
//
// The history matcher uses embeddings to compare project descriptions.
// The capability is optional: any error here routes the caller onto its
// deterministic bag-of-words fallback.
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sentinel errors.
var (
	// ErrEmptyInput indicates empty input text.
	ErrEmptyInput = errors.New("empty input text")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid embeddings configuration")

	// ErrUnavailable indicates the capability is not configured.
	ErrUnavailable = errors.New("embedding capability unavailable")
)

// Embedder generates a vector embedding for a single text.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Config holds configuration for the embedding service.
type Config struct {
	// Enabled turns the external capability on. When false the service
	// constructor returns a disabled embedder whose calls always fail.
	Enabled bool `koanf:"enabled"`

	// BaseURL is the base URL of a TEI-compatible embedding server.
	BaseURL string `koanf:"base_url"`

	// Model is the embedding model name, informational only for TEI.
	Model string `koanf:"model"`

	// TimeoutSeconds bounds each request.
	TimeoutSeconds int `koanf:"timeout_seconds"`
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Enabled && c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	return nil
}

// NewEmbedder creates an embedder from config. A disabled config yields
// an embedder that always reports the capability unavailable.
func NewEmbedder(cfg Config) (Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return &disabledEmbedder{}, nil
	}

	timeout := 10 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Service{config: cfg, client: &http.Client{Timeout: timeout}}, nil
}

// disabledEmbedder always fails, routing callers to their local tier.
type disabledEmbedder struct{}

func (d *disabledEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, ErrUnavailable
}

// Service calls a TEI-compatible /embed endpoint.
type Service struct {
	config Config
	client *http.Client
}

// teiRequest is the request body for the TEI embed endpoint.
type teiRequest struct {
	Inputs   []string `json:"inputs"`
	Truncate bool     `json:"truncate"`
}

// EmbedQuery generates an embedding for one text. The call is attempted
// exactly once.
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}

	body, err := json.Marshal(teiRequest{Inputs: []string{text}, Truncate: true})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed server error (%d)", resp.StatusCode)
	}

	var vectors [][]float32
	if err := json.Unmarshal(respBody, &vectors); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("embed server returned no vectors")
	}
	return vectors[0], nil
}

var _ Embedder = (*Service)(nil)
var _ Embedder = (*disabledEmbedder)(nil)

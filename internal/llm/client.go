// Package llm provides the external text-generation capability.
//
// The pipeline treats the capability as "given a prompt, returns text or
// fails": any transport error, timeout or non-OK status is reported as a
// plain error and the caller falls back to its deterministic local tier.
// Calls are attempted at most once; there is no retry loop here or at the
// call sites.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Sentinel errors.
var (
	// ErrUnavailable indicates the capability is not configured.
	ErrUnavailable = errors.New("text capability unavailable")

	// ErrEmptyResponse indicates the provider returned no content.
	ErrEmptyResponse = errors.New("empty response from provider")

	// ErrInvalidConfig indicates invalid client configuration.
	ErrInvalidConfig = errors.New("invalid llm configuration")
)

// Client is the external text-generation capability.
type Client interface {
	// Complete sends a system and user prompt and returns the generated
	// text. Implementations attempt the call exactly once.
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error)
}

// Config holds configuration for an LLM client.
type Config struct {
	// Provider selects the wire format: "anthropic", "openai" or
	// "disabled".
	Provider string `koanf:"provider"`

	// APIKey authenticates against the provider.
	APIKey string `koanf:"api_key"`

	// Model is the model identifier to request.
	Model string `koanf:"model"`

	// BaseURL overrides the provider endpoint, mainly for tests.
	BaseURL string `koanf:"base_url"`

	// TimeoutSeconds bounds each request. A timeout is equivalent to the
	// capability being unavailable.
	TimeoutSeconds int `koanf:"timeout_seconds"`

	// RequestsPerSecond limits outbound request rate. Zero uses the default.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	defaultOpenAIBaseURL    = "https://api.openai.com"
	defaultAnthropicModel   = "claude-3-5-haiku-latest"
	defaultOpenAIModel      = "gpt-4o-mini"
	defaultTimeout          = 20 * time.Second
	defaultRateLimit        = 2.0
	defaultBurst            = 4
)

// NewClient creates a client for the configured provider. A "disabled" or
// empty provider returns a client whose calls always fail with
// ErrUnavailable, which routes every caller onto its local tier.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "", "disabled":
		return &disabledClient{}, nil
	case "anthropic":
		return newHTTPClient(cfg, anthropicWire{})
	case "openai":
		return newHTTPClient(cfg, openAIWire{})
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// Disabled returns a client whose calls always fail with ErrUnavailable.
// Callers use it to force their local tiers.
func Disabled() Client {
	return &disabledClient{}
}

// disabledClient always reports the capability as unavailable.
type disabledClient struct{}

func (d *disabledClient) Complete(context.Context, string, string, float64, int) (string, error) {
	return "", ErrUnavailable
}

// wireFormat adapts one provider's request/response shapes.
type wireFormat interface {
	path() string
	headers(req *http.Request, apiKey string)
	defaultModel() string
	defaultBaseURL() string
	encode(model, system, user string, temperature float64, maxTokens int) (any, error)
	decode(body []byte) (string, error)
}

// httpClient is a single-attempt HTTP client over one wire format.
type httpClient struct {
	config  Config
	wire    wireFormat
	client  *http.Client
	limiter *rate.Limiter
}

func newHTTPClient(cfg Config, wire wireFormat) (*httpClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key required for provider %q", ErrInvalidConfig, cfg.Provider)
	}
	if cfg.Model == "" {
		cfg.Model = wire.defaultModel()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = wire.defaultBaseURL()
	}

	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	limit := cfg.RequestsPerSecond
	if limit <= 0 {
		limit = defaultRateLimit
	}

	return &httpClient{
		config:  cfg,
		wire:    wire,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(limit), defaultBurst),
	}, nil
}

// Complete performs exactly one request against the provider.
func (c *httpClient) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	payload, err := c.wire.encode(c.config.Model, systemPrompt, userPrompt, temperature, maxTokens)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+c.wire.path(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.wire.headers(req, c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider error (%d): %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	text, err := c.wire.decode(respBody)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ Client = (*httpClient)(nil)
var _ Client = (*disabledClient)(nil)

// Package config loads the service configuration: hardcoded defaults,
// overridden by an optional YAML file, overridden by QUOTED_* environment
// variables. The result is validated once and passed into constructors;
// nothing reads the environment after startup.
package config

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/quoted/internal/distribute"
	"github.com/fyrsmithlabs/quoted/internal/embeddings"
	"github.com/fyrsmithlabs/quoted/internal/estimate"
	"github.com/fyrsmithlabs/quoted/internal/history"
	"github.com/fyrsmithlabs/quoted/internal/llm"
	"github.com/fyrsmithlabs/quoted/internal/logging"
	"github.com/fyrsmithlabs/quoted/internal/quote"
)

// History backends.
const (
	BackendMemory  = "memory"
	BackendChromem = "chromem"
)

var (
	ErrInvalidPort    = errors.New("config: port must be between 1 and 65535")
	ErrInvalidBackend = errors.New("config: unknown history backend")
	ErrMissingPath    = errors.New("config: chromem backend requires a path")
)

// ServerConfig is the HTTP surface configuration.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// EngineConfig groups the pricing engine knobs.
type EngineConfig struct {
	Estimate   estimate.Config   `koanf:"estimate"`
	Distribute distribute.Config `koanf:"distribute"`
	Quote      quote.Config      `koanf:"quote"`
	Matching   history.Config    `koanf:"matching"`
}

// HistoryConfig selects the history backend.
type HistoryConfig struct {
	// Backend is "memory" or "chromem".
	Backend string `koanf:"backend"`

	// Path is the chromem database directory.
	Path string `koanf:"path"`
}

// Config is the full service configuration.
type Config struct {
	Logging    logging.Config    `koanf:"logging"`
	Server     ServerConfig      `koanf:"server"`
	Engine     EngineConfig      `koanf:"engine"`
	LLM        llm.Config        `koanf:"llm"`
	Embeddings embeddings.Config `koanf:"embeddings"`
	History    HistoryConfig     `koanf:"history"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		Logging: *logging.DefaultConfig(),
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8420},
		Engine: EngineConfig{
			Estimate:   estimate.Config{InflationIndex: 1.0, MarketIndex: 1.0},
			Distribute: distribute.Config{BaseMargin: 0.25, OverheadPercent: 0.10},
			Quote:      quote.DefaultConfig(),
			Matching:   history.DefaultConfig(),
		},
		History: HistoryConfig{Backend: BackendMemory},
	}
}

// Validate checks the configuration for values that would make the
// service misbehave at runtime.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config: logging: %w", err)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	switch c.History.Backend {
	case BackendMemory:
	case BackendChromem:
		if c.History.Path == "" {
			return ErrMissingPath
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.History.Backend)
	}
	if c.Engine.Distribute.BaseMargin < 0 {
		return errors.New("config: base margin must not be negative")
	}
	if c.Engine.Matching.BlendRatio < 0 || c.Engine.Matching.BlendRatio > 1 {
		return errors.New("config: blend ratio must be within [0, 1]")
	}
	return nil
}

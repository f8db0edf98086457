package logging

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum enabled level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`

	// Format selects the encoder: "json" or "console".
	Format string `koanf:"format"`

	// Fields are constant fields attached to every log line.
	Fields map[string]string `koanf:"fields"`
}

// DefaultConfig returns a production-leaning default configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, err := c.zapLevel(); err != nil {
		return err
	}
	switch c.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("unknown log format %q (want json or console)", c.Format)
	}
}

// zapLevel resolves the configured level string to a zapcore.Level.
func (c *Config) zapLevel() (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return lvl, fmt.Errorf("unknown log level %q: %w", c.Level, err)
	}
	return lvl, nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendMemory, cfg.History.Backend)
	assert.Equal(t, 8420, cfg.Server.Port)
	assert.Equal(t, 0.25, cfg.Engine.Distribute.BaseMargin)
	assert.Equal(t, 0.6, cfg.Engine.Matching.BlendRatio)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
}

func TestLoad_MissingNamedFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9001
engine:
  distribute:
    base_margin: 0.30
llm:
  provider: disabled
history:
  backend: chromem
  path: /tmp/quoted-history
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, 0.30, cfg.Engine.Distribute.BaseMargin)
	assert.Equal(t, BackendChromem, cfg.History.Backend)
	// Untouched values keep their defaults.
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 1.0, cfg.Engine.Estimate.InflationIndex)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9001\n"), 0o600))
	t.Setenv("QUOTED_SERVER_PORT", "9500")
	t.Setenv("QUOTED_LLM_PROVIDER", "openai")
	t.Setenv("QUOTED_LLM_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9500, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.LLM.Provider)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{
			name:   "bad port",
			mutate: func(c *Config) { c.Server.Port = 0 },
			want:   ErrInvalidPort,
		},
		{
			name:   "unknown backend",
			mutate: func(c *Config) { c.History.Backend = "redis" },
			want:   ErrInvalidBackend,
		},
		{
			name:   "chromem without path",
			mutate: func(c *Config) { c.History.Backend = BackendChromem },
			want:   ErrMissingPath,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

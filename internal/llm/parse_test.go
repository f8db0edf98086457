package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringArray(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantOK  bool
		want    []string
	}{
		{
			name:   "plain json array",
			raw:    `["Diseño de marca", "Producción de contenido"]`,
			wantOK: true,
			want:   []string{"Diseño de marca", "Producción de contenido"},
		},
		{
			name:   "fenced json array",
			raw:    "```json\n[\"uno\", \"dos\"]\n```",
			wantOK: true,
			want:   []string{"uno", "dos"},
		},
		{
			name:    "exact length enforced",
			raw:     `["uno", "dos"]`,
			wantLen: 3,
			wantOK:  false,
		},
		{name: "not json", raw: "claro, aquí tienes tu lista:", wantOK: false},
		{name: "empty array", raw: `[]`, wantOK: false},
		{name: "blank entry", raw: `["uno", "  "]`, wantOK: false},
		{name: "oversized entry", raw: `["` + strings.Repeat("x", 400) + `"]`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseStringArray(tt.raw, tt.wantLen)
			assert.Equal(t, tt.wantOK, got.OK)
			if tt.wantOK {
				assert.Equal(t, tt.want, got.Items)
			} else {
				assert.Equal(t, tt.raw, got.Raw, "malformed result retains raw text")
			}
		})
	}
}

func TestParseCopy(t *testing.T) {
	t.Run("full object", func(t *testing.T) {
		got := ParseCopy(`{"title": "Cotización web", "summary": "Resumen", "terms": "50% anticipo", "timeline": "6 semanas"}`)
		require.True(t, got.OK)
		assert.Equal(t, "Cotización web", got.Fields.Title)
		assert.Equal(t, "6 semanas", got.Fields.Timeline)
	})

	t.Run("partial object is usable", func(t *testing.T) {
		got := ParseCopy(`{"title": "Solo título"}`)
		require.True(t, got.OK)
		assert.Equal(t, "Solo título", got.Fields.Title)
		assert.Empty(t, got.Fields.Terms)
	})

	t.Run("empty object is malformed", func(t *testing.T) {
		got := ParseCopy(`{}`)
		assert.False(t, got.OK)
	})

	t.Run("prose is malformed", func(t *testing.T) {
		got := ParseCopy("Aquí tienes el resumen que pediste")
		assert.False(t, got.OK)
		assert.NotEmpty(t, got.Raw)
	})
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"software", "software", true},
		{`"Marketing"`, "marketing", true},
		{"construction.", "construction", true},
		{"es un proyecto de software", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseLabel(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewClient(t *testing.T) {
	t.Run("disabled provider always unavailable", func(t *testing.T) {
		client, err := NewClient(Config{Provider: "disabled"})
		require.NoError(t, err)
		_, err = client.Complete(t.Context(), "sys", "user", 0.2, 100)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		_, err := NewClient(Config{Provider: "palantir"})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("api key required", func(t *testing.T) {
		_, err := NewClient(Config{Provider: "anthropic"})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

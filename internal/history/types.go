// Package history records generated quotes per owner and suggests price
// bands for new requests based on similarity to past work.
//
// Recording is fire-and-forget: a failed write is logged and swallowed,
// never surfaced to the caller. Suggestions likewise never fail; any
// error or lack of data yields an empty suggestion.
package history

import (
	"time"

	"github.com/fyrsmithlabs/quoted/internal/distribute"
	"github.com/fyrsmithlabs/quoted/internal/sector"
)

// Entry is one recorded quote. Entries are append-only and never mutated.
type Entry struct {
	ID          string            `json:"id"`
	OwnerID     string            `json:"owner_id"`
	Sector      sector.Tag        `json:"sector"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	TotalAmount float64           `json:"total_amount"`
	Items       []distribute.Item `json:"items"`

	// Embedding is the stored comparison vector. It may be nil when
	// vector generation failed; such entries are skipped at query time.
	Embedding []float32 `json:"embedding,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// SimilarQuote references a past quote by descending similarity score.
type SimilarQuote struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// PriceSuggestion is the outcome of a similarity lookup. The numeric
// fields are meaningful only when HasAverage is true.
type PriceSuggestion struct {
	HasAverage       bool           `json:"has_average"`
	SuggestedAverage float64        `json:"suggested_average,omitempty"`
	Low              float64        `json:"low,omitempty"`
	High             float64        `json:"high,omitempty"`
	SimilarQuotes    []SimilarQuote `json:"similar_quotes,omitempty"`
}

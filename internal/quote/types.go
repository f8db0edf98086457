// Package quote is the top-level generation pipeline. It sequences
// validation, sector resolution, item sourcing, estimation, distribution
// and packaging into a single Generate call.
//
// The pipeline never surfaces infrastructure failures: every external
// text call has a deterministic local fallback, and any fault past
// validation re-enters the fully local path. The only error a caller can
// see is *RejectedError.
package quote

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/quoted/internal/distribute"
	"github.com/fyrsmithlabs/quoted/internal/estimate"
	"github.com/fyrsmithlabs/quoted/internal/history"
	"github.com/fyrsmithlabs/quoted/internal/sector"
	"github.com/fyrsmithlabs/quoted/internal/strategy"
)

// Reason codes carried by RejectedError.
const (
	ReasonTooShort     = "too_short"
	ReasonBlacklisted  = "blacklisted"
	ReasonImplausible  = "implausible"
	ReasonNoVocabulary = "no_professional_vocabulary"
	ReasonNoSector     = "unclassifiable"
)

// RejectedError is the soft, terminal rejection of an input. It is the
// only error Generate returns.
type RejectedError struct {
	Reason  string
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("input rejected (%s): %s", e.Reason, e.Message)
}

// QualityLevel selects a margin offset for the quote.
type QualityLevel string

const (
	QualityEconomy  QualityLevel = "economy"
	QualityStandard QualityLevel = "standard"
	QualityPremium  QualityLevel = "premium"
)

// UserItem is a caller-supplied line item. UnitPrice zero means "price
// this for me".
type UserItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Request is one quote generation request.
type Request struct {
	Description   string       `json:"description"`
	ClientName    string       `json:"client_name"`
	PriceRange    string       `json:"price_range,omitempty"`
	SectorHint    string       `json:"sector_hint,omitempty"`
	Items         []UserItem   `json:"items,omitempty"`
	Quality       QualityLevel `json:"quality,omitempty"`
	Location      string       `json:"location,omitempty"`
	OwnerID       string       `json:"owner_id,omitempty"`
	ClientProfile string       `json:"client_profile,omitempty"`
	ProjectType   string       `json:"project_type,omitempty"`
	Region        string       `json:"region,omitempty"`
	TaxPercent    float64      `json:"tax_percent,omitempty"`
}

// Audit records how the quote was produced: which stages fell back to
// the local tier, the estimate provenance, and the allocation weights.
type Audit struct {
	SectorTier         strategy.Tier           `json:"sector_tier"`
	ItemsTier          strategy.Tier           `json:"items_tier"`
	CopyTier           strategy.Tier           `json:"copy_tier"`
	Recovered          bool                    `json:"recovered,omitempty"`
	Estimate           estimate.CostEstimate   `json:"estimate"`
	Blended            bool                    `json:"blended"`
	BlendedFrom        float64                 `json:"blended_from,omitempty"`
	History            history.PriceSuggestion `json:"history,omitempty"`
	Weights            []float64               `json:"weights"`
	AestheticAdjusted  bool                    `json:"aesthetic_adjusted,omitempty"`
	FluctuationWarning string                  `json:"fluctuation_warning,omitempty"`
}

// Quote is a complete priced quote.
type Quote struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Client     string            `json:"client"`
	Sector     sector.Tag        `json:"sector"`
	Items      []distribute.Item `json:"items"`
	Subtotal   float64           `json:"subtotal"`
	TaxPercent float64           `json:"tax_percent"`
	Tax        float64           `json:"tax"`
	Total      float64           `json:"total"`
	ValidUntil time.Time         `json:"valid_until"`
	Terms      string            `json:"terms"`
	Timeline   string            `json:"timeline"`
	Summary    string            `json:"summary"`
	CreatedAt  time.Time         `json:"created_at"`
	Audit      Audit             `json:"audit"`
}

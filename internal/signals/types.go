// Package signals derives structured project signals from free text.
//
// The extractor is a pure function over the description and optional
// hints: it holds no state beyond the shared sector registry, performs no
// I/O and never fails. A signal that cannot be detected simply leaves its
// field unset.
package signals

import "github.com/fyrsmithlabs/quoted/internal/sector"

// ClientProfile is the closed set of requester profiles.
type ClientProfile string

// Known client profiles.
const (
	ProfileFreelancer    ClientProfile = "freelancer"
	ProfileSmallBusiness ClientProfile = "small-business"
	ProfileAgency        ClientProfile = "agency"
	ProfileStartup       ClientProfile = "startup"
	ProfileEnterprise    ClientProfile = "enterprise"
)

// Complexity buckets for the software sub-detector.
const (
	ComplexityLow    = "low"
	ComplexityMedium = "medium"
	ComplexityHigh   = "high"
)

// SoftwareProfile is advisory metadata for software-sector requests. It is
// exposed for downstream consumers and does not feed pricing directly.
type SoftwareProfile struct {
	// Score is the raw complexity score before bucketing.
	Score int `json:"score"`

	// Complexity is the bucketed score: low, medium or high.
	Complexity string `json:"complexity"`

	// Signals lists which complexity signals fired, in detection order.
	Signals []string `json:"signals,omitempty"`
}

// ProjectContext carries every signal extracted from a request.
//
// Multiplier fields are either zero (absent, meaning no adjustment) or
// strictly positive; they are never published as zero adjustments.
type ProjectContext struct {
	// ScaleHint is the detected project scale, empty when undetected.
	ScaleHint sector.Scale `json:"scale_hint,omitempty"`

	// UrgencyMultiplier is >= 1.0 when an urgency pattern matched.
	UrgencyMultiplier float64 `json:"urgency_multiplier,omitempty"`

	// UrgencyReason names the matched urgency pattern.
	UrgencyReason string `json:"urgency_reason,omitempty"`

	// TimelineWeeks is the requested delivery horizon in weeks.
	TimelineWeeks int `json:"timeline_weeks,omitempty"`

	// LocationHint is the detected location as written by the requester.
	LocationHint string `json:"location_hint,omitempty"`

	// LocationMultiplier is the multiplier resolved for the location.
	LocationMultiplier float64 `json:"location_multiplier,omitempty"`

	// Region is the normalized region key resolved from the location.
	Region string `json:"region,omitempty"`

	// ClientProfile is the guessed requester profile.
	ClientProfile ClientProfile `json:"client_profile,omitempty"`

	// ProjectType is the sector-specific sub-type tag.
	ProjectType string `json:"project_type,omitempty"`

	// FluctuationWarning advises about volatile material costs.
	FluctuationWarning string `json:"fluctuation_warning,omitempty"`

	// Software carries the complexity sub-detector output for the
	// software sector only.
	Software *SoftwareProfile `json:"software,omitempty"`
}

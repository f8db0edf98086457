// Package estimate turns sector reference bands and extracted signals
// into a target total for a quote.
//
// The estimator is pure and never fails: with no hints at all it still
// resolves the sector's default scale and returns the band midpoint.
package estimate

import (
	"math"

	"github.com/fyrsmithlabs/quoted/internal/sector"
	"github.com/fyrsmithlabs/quoted/internal/signals"
)

// Rush surcharge applied when the requested timeline is two weeks or less.
const (
	rushMultiplier    = 1.10
	rushTimelineWeeks = 2
)

// Config holds the economy-wide indices applied to every estimate. It is
// constructed once from configuration and passed in explicitly; the
// estimator never reads the process environment.
type Config struct {
	// InflationIndex is the global inflation adjustment (1.0 = none).
	InflationIndex float64 `koanf:"inflation_index"`

	// MarketIndex is the global market-location adjustment (1.0 = none).
	MarketIndex float64 `koanf:"market_index"`
}

// Input carries everything an estimate depends on. Explicit fields take
// precedence over the equivalent extracted signal.
type Input struct {
	Sector        sector.Tag
	Context       signals.ProjectContext
	PriceRange    string
	ClientProfile string
	ProjectType   string
	Region        string
}

// AppliedMultiplier records one adjustment that was actually applied.
type AppliedMultiplier struct {
	Name   string  `json:"name"`
	Factor float64 `json:"factor"`
}

// RangeValidation records the clamping outcome for audit.
type RangeValidation struct {
	// Adjusted is true when clamping moved the value.
	Adjusted bool `json:"adjusted"`

	// Original retains the pre-clamp value when Adjusted.
	Original float64 `json:"original,omitempty"`

	// Band is the ticket band the total was validated against.
	Band sector.Band `json:"band"`

	// SectorBand is false when the generic profile band had to be used.
	SectorBand bool `json:"sector_band"`
}

// CostEstimate is the priced outcome for a request before distribution.
type CostEstimate struct {
	Sector      sector.Tag          `json:"sector"`
	Scale       sector.Scale        `json:"scale"`
	BaseTotal   float64             `json:"base_total"`
	Applied     []AppliedMultiplier `json:"applied_multipliers"`
	TargetTotal float64             `json:"target_total"`
	Range       RangeValidation     `json:"range_validation"`
}

// Estimator computes cost estimates from the sector registry.
type Estimator struct {
	registry *sector.Registry
	config   Config
}

// NewEstimator creates an estimator. Zero-valued config indices are
// treated as neutral.
func NewEstimator(registry *sector.Registry, config Config) *Estimator {
	return &Estimator{registry: registry, config: config}
}

// Estimate resolves the scale and band for the input and applies the
// multiplier chain. Adjustments stack multiplicatively against the
// running total in application order, never against the original base.
func (e *Estimator) Estimate(in Input) CostEstimate {
	profile := e.registry.Profile(in.Sector)
	scale := e.resolveScale(profile, in)
	band, sectorBand := e.registry.Band(profile.Tag, scale)

	est := CostEstimate{
		Sector:    profile.Tag,
		Scale:     scale,
		BaseTotal: band.Mid(),
		Range:     RangeValidation{Band: band, SectorBand: sectorBand},
	}

	total := est.BaseTotal
	apply := func(name string, factor float64) {
		if factor > 0 && factor != 1.0 {
			total *= factor
			est.Applied = append(est.Applied, AppliedMultiplier{Name: name, Factor: factor})
		}
	}

	apply("inflation", e.config.InflationIndex)
	apply("market", e.config.MarketIndex)

	if clientProfile := firstNonEmpty(in.ClientProfile, string(in.Context.ClientProfile)); clientProfile != "" {
		if m, ok := profile.ClientProfileMultiplier(clientProfile); ok {
			apply("client_profile", m)
		}
	}

	if projectType := firstNonEmpty(in.ProjectType, in.Context.ProjectType); projectType != "" {
		if m, ok := profile.ProjectTypeMultiplier(projectType); ok {
			apply("project_type", m)
		}
	}

	// Region-specific multiplier preferred over the generic location one.
	if region := firstNonEmpty(in.Region, in.Context.Region); region != "" {
		if m, ok := e.registry.RegionMultiplier(profile.Tag, region); ok {
			apply("region", m)
		} else if in.Context.LocationMultiplier > 0 {
			apply("location", in.Context.LocationMultiplier)
		}
	} else if in.Context.LocationMultiplier > 0 {
		apply("location", in.Context.LocationMultiplier)
	}

	if in.Context.UrgencyMultiplier > 0 {
		apply("urgency", in.Context.UrgencyMultiplier)
	}
	if in.Context.TimelineWeeks > 0 && in.Context.TimelineWeeks <= rushTimelineWeeks {
		apply("rush", rushMultiplier)
	}

	rounded := math.Round(total)
	clamped, adjusted := band.Clamp(rounded)
	est.TargetTotal = clamped
	if adjusted {
		est.Range.Adjusted = true
		est.Range.Original = rounded
	}
	return est
}

// resolveScale applies the precedence: explicit scale hint, scale parsed
// from the price range, then the sector's configured default.
func (e *Estimator) resolveScale(profile *sector.Profile, in Input) sector.Scale {
	if in.Context.ScaleHint != "" {
		return in.Context.ScaleHint
	}
	if in.PriceRange != "" {
		if _, high, ok := signals.ParsePriceRange(in.PriceRange); ok {
			if scale := signals.ScaleForAmount(high); scale != "" {
				return scale
			}
		}
	}
	return profile.DefaultScale
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

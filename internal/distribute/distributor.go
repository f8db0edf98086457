// Package distribute allocates a target total across quote line items.
//
// Allocation is weighted by the sector's benchmark and weight tables so
// that line items reflect real cost concentration (structure costs more
// than cleanup on a construction quote), with a per-item floor preventing
// degenerate near-zero lines. The cosmetic rounding steps exist purely for
// perceived professionalism of the output and are deliberately
// deterministic so two identical requests produce identical quotes.
package distribute

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/fyrsmithlabs/quoted/internal/sector"
	"github.com/fyrsmithlabs/quoted/internal/textnorm"
)

// Per-item allocation floor as a share of the base subtotal, divided by
// the item count.
const floorShare = 0.05

// Aesthetic-correction cap: the final grand-total shift is skipped when
// the needed correction exceeds this share of the total.
const aestheticMaxShare = 0.02

// positionalWeights applies in architecture-practice mode, where line
// items follow a fixed professional ordering (project, preliminaries,
// structure, finishes, closeout) instead of keyword weighting. Items
// beyond the table reuse the last weight.
var positionalWeights = []float64{1.6, 1.3, 1.1, 0.9, 0.7, 0.5}

// Config holds the margin and overhead base rates. Constructed once from
// configuration; the distributor never reads the environment.
type Config struct {
	// BaseMargin is the profit margin rate, e.g. 0.25 for 25%.
	BaseMargin float64 `koanf:"base_margin"`

	// OverheadPercent is the indirect-cost rate, e.g. 0.10 for 10%.
	OverheadPercent float64 `koanf:"overhead_percent"`
}

// ItemSpec describes one line item to be priced.
type ItemSpec struct {
	Description string
	Quantity    int
}

// Item is a priced line item. Total is derived from Quantity and
// UnitPrice and is never set independently.
type Item struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// Input carries one distribution request.
type Input struct {
	Items       []ItemSpec
	TargetTotal float64
	Sector      sector.Tag
	TaxPercent  float64

	// MarginOffset adjusts the configured base margin for this quote
	// (quality tiers map to offsets). The effective margin never goes
	// negative.
	MarginOffset float64

	// ArchitectureMode switches to the fixed positional weight table.
	ArchitectureMode bool
}

// Result is the outcome of a distribution.
type Result struct {
	Items []Item `json:"items"`

	// Weights are the normalized allocation weights, in item order.
	Weights []float64 `json:"weights"`

	// AestheticAdjusted is true when the final grand total was shifted
	// away from an overly round number.
	AestheticAdjusted bool `json:"aesthetic_adjusted"`
}

// Distributor allocates totals across items using the sector registry.
type Distributor struct {
	registry *sector.Registry
	config   Config
}

// NewDistributor creates a distributor.
func NewDistributor(registry *sector.Registry, config Config) *Distributor {
	return &Distributor{registry: registry, config: config}
}

// Distribute assigns quantity, unit price and total to every item. It
// never fails: an empty weight signal degrades to equal weighting and a
// non-positive target yields zeroed items.
func (d *Distributor) Distribute(in Input) Result {
	if len(in.Items) == 0 {
		return Result{}
	}

	weights := d.weights(in)

	items := make([]Item, len(in.Items))
	for i, spec := range in.Items {
		qty := spec.Quantity
		if qty < 1 {
			qty = 1
		}
		items[i] = Item{Description: spec.Description, Quantity: qty}
	}
	if in.TargetTotal <= 0 {
		return Result{Items: items, Weights: weights}
	}

	targetSubtotal := in.TargetTotal / (1 + in.TaxPercent/100)
	marginMult := 1 + math.Max(d.config.BaseMargin+in.MarginOffset, 0)
	overheadMult := 1 + d.config.OverheadPercent
	baseSubtotal := targetSubtotal / (marginMult * overheadMult)

	// Allocate, floor, gross up, and break suspiciously round totals.
	floor := floorShare * baseSubtotal / float64(len(items))
	totals := make([]float64, len(items))
	for i := range items {
		alloc := baseSubtotal * weights[i]
		if alloc < floor {
			alloc = floor
		}
		totals[i] = nudge(alloc*overheadMult*marginMult, i)
	}

	// Flooring (and nudging) can push the sum off target; rescale once
	// and re-apply the nudge.
	if sum := sumOf(totals); math.Abs(sum-targetSubtotal) > 1 && sum > 0 {
		ratio := targetSubtotal / sum
		for i := range totals {
			totals[i] = nudge(totals[i]*ratio, i)
		}
	}

	// The re-nudge can strand the sum off target again when the rescaled
	// totals land back on round values. Settle exactly on the subtotal;
	// roundness of the grand total is handled by the final pass below.
	if sum := sumOf(totals); math.Abs(sum-targetSubtotal) > 1 && sum > 0 {
		ratio := targetSubtotal / sum
		for i := range totals {
			totals[i] *= ratio
		}
	}

	for i := range items {
		setItemTotal(&items[i], totals[i])
	}

	result := Result{Items: items, Weights: weights}

	// Final pass on the grand total: shift a 00/50 ending when the
	// correction stays within the aesthetic cap.
	grand := sumItems(items) * (1 + in.TaxPercent/100)
	if correction := nudgeAmount(0); isRoundish(grand) && grand > 0 && correction/grand <= aestheticMaxShare {
		ratio := (grand - correction) / grand
		for i := range items {
			setItemTotal(&items[i], items[i].Total*ratio)
		}
		result.AestheticAdjusted = true
	}

	result.Items = items
	return result
}

// weights resolves the raw weight of every item and normalizes to sum 1.
// The keyword chain is benchmark table, then relative-weight table, then
// neutral; architecture mode replaces the chain with positional weights.
func (d *Distributor) weights(in Input) []float64 {
	profile := d.registry.Profile(in.Sector)
	raw := make([]float64, len(in.Items))

	for i, spec := range in.Items {
		if in.ArchitectureMode {
			idx := i
			if idx >= len(positionalWeights) {
				idx = len(positionalWeights) - 1
			}
			raw[i] = positionalWeights[idx]
			continue
		}

		text := textnorm.Normalize(spec.Description)
		if w, ok := profile.BenchmarkWeight(text); ok {
			raw[i] = w
		} else if w, ok := profile.RelativeWeight(text); ok {
			raw[i] = w
		} else {
			raw[i] = 1
		}
	}

	sum := sumOf(raw)
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		equal := 1 / float64(len(raw))
		for i := range raw {
			raw[i] = equal
		}
		return raw
	}
	for i := range raw {
		raw[i] /= sum
	}
	return raw
}

// setItemTotal derives the unit price from a raw total and re-derives the
// stored total from the rounded unit price, keeping Total = Qty * UnitPrice.
func setItemTotal(item *Item, total float64) {
	unit := round2(total / float64(item.Quantity))
	if unit < 0 {
		unit = 0
	}
	item.UnitPrice = unit
	item.Total = round2(unit * float64(item.Quantity))
}

// nudge breaks totals whose last two digits are exactly 00 or 50 by a
// small deterministic amount, sign alternating by item index.
func nudge(total float64, index int) float64 {
	if !isRoundish(total) {
		return total
	}
	amount := nudgeAmount(index)
	if index%2 == 1 {
		amount = -amount
	}
	nudged := total + amount
	if nudged <= 0 {
		nudged = total + math.Abs(amount)
	}
	return nudged
}

// nudgeAmount yields a value in [3.7, 10.9] that varies with the index.
func nudgeAmount(index int) float64 {
	return 3.7 + 0.9*float64(index%9)
}

// isRoundish reports whether v is a whole amount ending in 00 or 50.
func isRoundish(v float64) bool {
	cents := int64(math.Round(v * 100))
	return cents != 0 && cents%5000 == 0
}

// round2 rounds to 2 decimals using decimal arithmetic to avoid float
// artifacts on currency values.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func sumOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

func sumItems(items []Item) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Total
	}
	return sum
}

package sector

import "strings"

// Tag identifies a business sector. The set is closed: anything a
// classifier cannot place lands on Other.
type Tag string

// Known sector tags.
const (
	Software      Tag = "software"
	Marketing     Tag = "marketing"
	Construction  Tag = "construction"
	Events        Tag = "events"
	Consulting    Tag = "consulting"
	Commerce      Tag = "commerce"
	Manufacturing Tag = "manufacturing"
	Training      Tag = "training"
	Other         Tag = "other"
)

// Tags lists every known tag, Other last.
func Tags() []Tag {
	return []Tag{Software, Marketing, Construction, Events, Consulting, Commerce, Manufacturing, Training, Other}
}

// ParseTag parses a free-form label into a Tag. Labels outside the closed
// set map to Other with ok=false.
func ParseTag(s string) (Tag, bool) {
	tag := Tag(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tags() {
		if tag == known {
			return known, true
		}
	}
	return Other, false
}

// Scale is the coarse project-size bucket that selects a ticket band.
type Scale string

// Known scales.
const (
	ScaleSmall      Scale = "small"
	ScaleStandard   Scale = "standard"
	ScaleEnterprise Scale = "enterprise"
)

// Band is a [Min, Max] currency range for a (sector, scale) pair.
type Band struct {
	Min float64 `koanf:"min"`
	Max float64 `koanf:"max"`
}

// Mid returns the midpoint of the band.
func (b Band) Mid() float64 {
	return (b.Min + b.Max) / 2
}

// Clamp snaps v into the band. The second return reports whether the
// value was moved.
func (b Band) Clamp(v float64) (float64, bool) {
	if v < b.Min {
		return b.Min, true
	}
	if v > b.Max {
		return b.Max, true
	}
	return v, false
}

// SubTypeRule maps a description keyword to a sector-specific sub-type tag.
type SubTypeRule struct {
	Keyword string `koanf:"keyword"`
	Tag     string `koanf:"tag"`
}

// Profile is the full configuration record for one sector. The classifier,
// extractor, estimator, distributor and template engine all read from this
// single record instead of keeping parallel keyword tables.
type Profile struct {
	Tag Tag `koanf:"-"`

	// Keywords are classifier trigger substrings, checked in order.
	Keywords []string `koanf:"keywords"`

	// Plausibility keywords mark a description as a valid generic request
	// even when no sector keyword matched.
	Plausibility []string `koanf:"plausibility"`

	// DefaultScale applies when neither a scale hint nor a price range
	// resolves one.
	DefaultScale Scale `koanf:"default_scale"`

	// Volatile marks sectors whose input costs fluctuate enough to warrant
	// an advisory warning on every quote.
	Volatile bool `koanf:"volatile"`

	// Bands holds the ticket band per scale.
	Bands map[Scale]Band `koanf:"bands"`

	// Templates are the concept strings used when the caller supplies no
	// line items.
	Templates []string `koanf:"templates"`

	// Benchmarks map item keywords to reference values. Benchmark values
	// act as allocation weights, not absolute prices.
	Benchmarks map[string]float64 `koanf:"benchmarks"`

	// Weights map item keywords to relative cost-share weights, consulted
	// when no benchmark matches.
	Weights map[string]float64 `koanf:"weights"`

	// ClientProfiles maps client-profile tags to price multipliers.
	ClientProfiles map[string]float64 `koanf:"client_profiles"`

	// ProjectTypes holds one or more named multiplier tables keyed by
	// sub-type tag. Exactly one table applies to a given sub-type: the
	// first (in sorted table-name order) that contains the key.
	ProjectTypes map[string]map[string]float64 `koanf:"project_types"`

	// Regions maps region keys to sector-specific multipliers, preferred
	// over the generic country table.
	Regions map[string]float64 `koanf:"regions"`

	// SubTypes are ordered keyword rules resolving a project sub-type.
	SubTypes []SubTypeRule `koanf:"subtypes"`
}

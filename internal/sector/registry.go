// Package sector holds the per-sector configuration registry.
//
// Every keyword, template, weight and multiplier table the pipeline reads
// lives in one embedded reference file, so the classifier, the distributor
// and the template engine share a single source of truth. The registry is
// loaded once at construction and is read-only afterwards, which makes it
// safe to share across concurrent requests.
package sector

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/fyrsmithlabs/quoted/internal/textnorm"
)

//go:embed sectors.yaml
var referenceData []byte

// Registry exposes the sector reference tables.
type Registry struct {
	profiles     map[Tag]*Profile
	genericBands map[Scale]Band
	regionMults  map[string]float64
	locations    map[string]string
}

// referenceFile mirrors the embedded YAML layout.
type referenceFile struct {
	GenericBands      map[Scale]Band      `koanf:"generic_bands"`
	RegionMultipliers map[string]float64  `koanf:"region_multipliers"`
	Locations         map[string]string   `koanf:"locations"`
	Sectors           map[string]*Profile `koanf:"sectors"`
}

// NewRegistry parses the embedded reference data into a Registry.
func NewRegistry() (*Registry, error) {
	return newRegistryFrom(referenceData)
}

func newRegistryFrom(data []byte) (*Registry, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("parsing sector reference data: %w", err)
	}

	var file referenceFile
	if err := k.Unmarshal("", &file); err != nil {
		return nil, fmt.Errorf("unmarshaling sector reference data: %w", err)
	}

	if len(file.Sectors) == 0 {
		return nil, fmt.Errorf("sector reference data has no sectors")
	}
	if _, ok := file.Sectors[string(Other)]; !ok {
		return nil, fmt.Errorf("sector reference data missing the %q profile", Other)
	}

	profiles := make(map[Tag]*Profile, len(file.Sectors))
	for name, profile := range file.Sectors {
		tag, ok := ParseTag(name)
		if !ok && name != string(Other) {
			return nil, fmt.Errorf("unknown sector %q in reference data", name)
		}
		profile.Tag = tag
		if profile.DefaultScale == "" {
			profile.DefaultScale = ScaleStandard
		}
		profile.normalize()
		profiles[tag] = profile
	}

	locations := make(map[string]string, len(file.Locations))
	for name, region := range file.Locations {
		locations[textnorm.Normalize(name)] = region
	}

	return &Registry{
		profiles:     profiles,
		genericBands: file.GenericBands,
		regionMults:  file.RegionMultipliers,
		locations:    locations,
	}, nil
}

// normalize rewrites every keyword key into the normalized matching space
// (lower-cased, diacritics stripped). Templates keep their display form.
func (p *Profile) normalize() {
	p.Keywords = textnorm.NormalizeList(p.Keywords)
	p.Plausibility = textnorm.NormalizeList(p.Plausibility)
	p.Benchmarks = textnorm.NormalizeKeys(p.Benchmarks)
	p.Weights = textnorm.NormalizeKeys(p.Weights)
	for i, rule := range p.SubTypes {
		p.SubTypes[i].Keyword = textnorm.Normalize(rule.Keyword)
	}
}

// Profile returns the configuration record for tag. Unknown tags resolve
// to the Other profile, so callers always get a usable record.
func (r *Registry) Profile(tag Tag) *Profile {
	if p, ok := r.profiles[tag]; ok {
		return p
	}
	return r.profiles[Other]
}

// Band resolves the ticket band for (tag, scale). When the sector has no
// band configured for the scale, the generic sector-profile band applies.
// The boolean reports whether the sector-specific band was found.
func (r *Registry) Band(tag Tag, scale Scale) (Band, bool) {
	if band, ok := r.Profile(tag).Bands[scale]; ok {
		return band, true
	}
	if band, ok := r.genericBands[scale]; ok {
		return band, false
	}
	// Last resort: the generic standard band always exists in shipped data.
	return r.genericBands[ScaleStandard], false
}

// RegionMultiplier resolves a regional multiplier for the sector. The
// sector-specific table is consulted before the generic country table.
func (r *Registry) RegionMultiplier(tag Tag, region string) (float64, bool) {
	if m, ok := r.Profile(tag).Regions[region]; ok {
		return m, true
	}
	m, ok := r.regionMults[region]
	return m, ok
}

// RegionForLocation maps a location name to a region key. The name is
// normalized before lookup, so callers may pass raw user text.
func (r *Registry) RegionForLocation(location string) (string, bool) {
	region, ok := r.locations[strings.TrimSpace(textnorm.Normalize(location))]
	return region, ok
}

// Keyword table lookups on Profile. All matching is substring matching
// over an already lower-cased, diacritic-stripped text; the longest
// matching keyword wins, ties broken lexicographically, so lookups are
// deterministic regardless of map iteration order.

// BenchmarkWeight returns the benchmark value whose keyword appears in text.
func (p *Profile) BenchmarkWeight(text string) (float64, bool) {
	return matchKeywordTable(p.Benchmarks, text)
}

// RelativeWeight returns the relative weight whose keyword appears in text.
func (p *Profile) RelativeWeight(text string) (float64, bool) {
	return matchKeywordTable(p.Weights, text)
}

// ClientProfileMultiplier returns the multiplier for a client profile tag.
func (p *Profile) ClientProfileMultiplier(profile string) (float64, bool) {
	m, ok := p.ClientProfiles[profile]
	return m, ok
}

// ProjectTypeMultiplier searches the sector's sub-type tables for the
// given sub-type tag. Exactly one table applies: the first, in sorted
// table-name order, that contains the key.
func (p *Profile) ProjectTypeMultiplier(subType string) (float64, bool) {
	names := make([]string, 0, len(p.ProjectTypes))
	for name := range p.ProjectTypes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if m, ok := p.ProjectTypes[name][subType]; ok {
			return m, true
		}
	}
	return 0, false
}

// SubType resolves the project sub-type for a description using the
// sector's ordered keyword rules.
func (p *Profile) SubType(text string) (string, bool) {
	for _, rule := range p.SubTypes {
		if strings.Contains(text, rule.Keyword) {
			return rule.Tag, true
		}
	}
	return "", false
}

// MatchesKeyword reports whether any classifier trigger appears in text.
func (p *Profile) MatchesKeyword(text string) bool {
	for _, kw := range p.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// MatchesPlausibility reports whether any plausibility keyword appears in text.
func (p *Profile) MatchesPlausibility(text string) bool {
	for _, kw := range p.Plausibility {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func matchKeywordTable(table map[string]float64, text string) (float64, bool) {
	var (
		bestKeyword string
		bestValue   float64
		found       bool
	)
	for keyword, value := range table {
		if !strings.Contains(text, keyword) {
			continue
		}
		if !found || len(keyword) > len(bestKeyword) ||
			(len(keyword) == len(bestKeyword) && keyword < bestKeyword) {
			bestKeyword = keyword
			bestValue = value
			found = true
		}
	}
	return bestValue, found
}

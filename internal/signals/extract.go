package signals

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/quoted/internal/sector"
	"github.com/fyrsmithlabs/quoted/internal/textnorm"
)

// Area thresholds in square meters.
const (
	areaEnterprise = 400
	areaStandard   = 120
	areaSmall      = 60
)

var (
	areaPattern     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:m2|m²|mts2|metros cuadrados)`)
	timelinePattern = regexp.MustCompile(`(\d+)\s*(semanas?|meses?|weeks?|months?)`)

	// locationPattern runs over the original (cased) description and
	// captures "en <Place>" with a capitalized place name.
	locationPattern = regexp.MustCompile(`\ben ((?:[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)(?:(?: de)? [A-ZÁÉÍÓÚÑ][a-záéíóúñ]+)*)`)
)

// urgencyRule is one entry in the ordered urgency pattern table.
type urgencyRule struct {
	pattern    *regexp.Regexp
	multiplier float64
	reason     string
}

// Patterns are matched against normalized text; the highest multiplier
// among all matches wins, earlier rules breaking ties.
var urgencyRules = []urgencyRule{
	{regexp.MustCompile(`\b(?:24|48)\s*(?:horas|hrs|h)\b|manana mismo`), 1.2, "entrega en 24-48 horas"},
	{regexp.MustCompile(`urgente|urgencia|emergencia`), 1.15, "entrega urgente"},
	{regexp.MustCompile(`lo antes posible|cuanto antes|asap`), 1.15, "entrega inmediata solicitada"},
	{regexp.MustCompile(`esta semana|fin de semana`), 1.1, "entrega en la semana"},
	{regexp.MustCompile(`\brapido\b|\bpronto\b`), 1.05, "entrega acelerada"},
}

// Keyword sets for scale detection.
var (
	enterpriseScaleKeywords = []string{"llave en mano", "turnkey", "proyecto integral", "corporativo", "gran escala", "enterprise", "a nivel nacional"}
	smallScaleKeywords      = []string{"piloto", "mvp", "prototipo", "prueba de concepto", "algo sencillo", "algo basico", "version inicial"}
)

// Raw-material keywords that trigger a fluctuation warning regardless of
// the sector's volatility flag.
var rawMaterialKeywords = []string{"acero", "cemento", "madera", "cobre", "aluminio", "materia prima", "materiales de construccion"}

// Client-profile keyword rules, checked in order.
var clientProfileRules = []struct {
	keyword string
	profile ClientProfile
}{
	{"freelance", ProfileFreelancer},
	{"independiente", ProfileFreelancer},
	{"agencia", ProfileAgency},
	{"startup", ProfileStartup},
	{"pyme", ProfileSmallBusiness},
	{"pequeno negocio", ProfileSmallBusiness},
	{"pequena empresa", ProfileSmallBusiness},
	{"corporativo", ProfileEnterprise},
	{"corporacion", ProfileEnterprise},
	{"gran empresa", ProfileEnterprise},
}

// Extractor derives a ProjectContext from a request description.
type Extractor struct {
	registry *sector.Registry
}

// NewExtractor creates an extractor backed by the sector registry.
func NewExtractor(registry *sector.Registry) *Extractor {
	return &Extractor{registry: registry}
}

// Extract runs the ordered detector chain over the description.
//
// The priceRange, location and tag arguments are optional hints; empty
// values simply skip the corresponding detectors. Extraction is pure and
// deterministic and never fails.
func (e *Extractor) Extract(description, priceRange, location string, tag sector.Tag) ProjectContext {
	var pc ProjectContext
	text := textnorm.Normalize(description)
	profile := e.registry.Profile(tag)

	// 1. Scale from keywords, then an explicit area overrides it.
	pc.ScaleHint = detectScaleKeywords(text)
	if scale, ok := detectScaleFromArea(text); ok {
		pc.ScaleHint = scale
	}

	// 2. Urgency: highest multiplier among matching patterns.
	for _, rule := range urgencyRules {
		if rule.pattern.MatchString(text) && rule.multiplier > pc.UrgencyMultiplier {
			pc.UrgencyMultiplier = rule.multiplier
			pc.UrgencyReason = rule.reason
		}
	}

	// 3. Timeline.
	if m := timelinePattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			if strings.HasPrefix(m[2], "mes") || strings.HasPrefix(m[2], "month") {
				n *= 4
			}
			pc.TimelineWeeks = n
		}
	}

	// 4. Location: explicit hint first, then "en <Place>" in the original text.
	if location == "" {
		if m := locationPattern.FindStringSubmatch(description); m != nil {
			location = m[1]
		}
	}
	if location != "" {
		pc.LocationHint = strings.TrimSpace(location)
		if region, ok := e.registry.RegionForLocation(location); ok {
			pc.Region = region
			if mult, ok := e.registry.RegionMultiplier(tag, region); ok {
				pc.LocationMultiplier = mult
			}
		}
	}

	// 5. No scale yet: infer from the price range upper bound.
	if pc.ScaleHint == "" && priceRange != "" {
		if _, high, ok := ParsePriceRange(priceRange); ok {
			pc.ScaleHint = ScaleForAmount(high)
		}
	}

	// 6. Volatility warning.
	if profile.Volatile || containsAny(text, rawMaterialKeywords) {
		pc.FluctuationWarning = "Los precios de materiales e insumos de este sector fluctúan; la cotización tiene vigencia limitada."
	}

	// 7. Client profile and sector sub-type.
	for _, rule := range clientProfileRules {
		if strings.Contains(text, rule.keyword) {
			pc.ClientProfile = rule.profile
			break
		}
	}
	if sub, ok := profile.SubType(text); ok {
		pc.ProjectType = sub
	}

	// 8. Software complexity sub-detector.
	if tag == sector.Software {
		pc.Software = detectSoftwareProfile(text)
	}

	return pc
}

// detectScaleKeywords applies the enterprise and small keyword sets.
// Enterprise keywords win over small ones when both appear.
func detectScaleKeywords(text string) sector.Scale {
	if containsAny(text, enterpriseScaleKeywords) {
		return sector.ScaleEnterprise
	}
	if containsAny(text, smallScaleKeywords) {
		return sector.ScaleSmall
	}
	return ""
}

// detectScaleFromArea buckets an explicit area measurement. Areas between
// the small and standard thresholds leave the scale untouched.
func detectScaleFromArea(text string) (sector.Scale, bool) {
	m := areaPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	area, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return "", false
	}
	switch {
	case area >= areaEnterprise:
		return sector.ScaleEnterprise, true
	case area >= areaStandard:
		return sector.ScaleStandard, true
	case area <= areaSmall:
		return sector.ScaleSmall, true
	default:
		return "", false
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

package signals

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/quoted/internal/sector"
)

// numberPattern matches currency amounts with optional thousand separators,
// e.g. "20000", "20,000", "20.000", "$ 20000".
var numberPattern = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})+|\d+(?:\.\d+)?`)

// thousandsPattern recognizes amounts written with thousand separators.
var thousandsPattern = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)

// Scale breakpoints on the upper bound of a price range. Amounts are in
// the same currency units as the sector bands.
const (
	smallScaleCeiling    = 15000
	standardScaleCeiling = 80000
)

// ParsePriceRange extracts the numeric bounds from a free-form price range
// string such as "20000-50000", "$20,000 a $50,000" or "hasta 30000".
// A single amount is treated as the upper bound. Returns ok=false when no
// amount can be parsed.
func ParsePriceRange(text string) (low, high float64, ok bool) {
	matches := numberPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return 0, 0, false
	}

	amounts := make([]float64, 0, len(matches))
	for _, m := range matches {
		if v, err := parseAmount(m); err == nil {
			amounts = append(amounts, v)
		}
	}
	if len(amounts) == 0 {
		return 0, 0, false
	}

	if len(amounts) == 1 {
		return 0, amounts[0], true
	}
	low, high = amounts[0], amounts[1]
	if low > high {
		low, high = high, low
	}
	return low, high, true
}

// parseAmount parses one matched token, treating "." or "," followed by
// exactly three digits as a thousands separator.
func parseAmount(token string) (float64, error) {
	cleaned := token
	if strings.ContainsAny(cleaned, ".,") {
		// Separators followed by groups of three digits are thousands marks.
		if thousandsPattern.MatchString(cleaned) {
			cleaned = strings.NewReplacer(".", "", ",", "").Replace(cleaned)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}
	return strconv.ParseFloat(cleaned, 64)
}

// ScaleForAmount buckets an upper-bound amount into a project scale.
func ScaleForAmount(upper float64) sector.Scale {
	switch {
	case upper <= 0:
		return ""
	case upper < smallScaleCeiling:
		return sector.ScaleSmall
	case upper < standardScaleCeiling:
		return sector.ScaleStandard
	default:
		return sector.ScaleEnterprise
	}
}

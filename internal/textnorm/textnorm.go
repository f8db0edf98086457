// Package textnorm normalizes free text for keyword matching.
//
// Descriptions arrive in Spanish with uneven casing and accents
// ("Diseño", "diseno", "DISEÑO" all mean the same keyword). Every keyword
// table in the pipeline matches against the normalized form produced here,
// and the sector registry normalizes its keys at load time so both sides
// of a lookup live in the same space.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripper decomposes text and removes combining marks, turning
// "construcción" into "construccion".
var stripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lower-cases s and strips diacritics. It never fails: if the
// transform chain errors on malformed input, the lower-cased original is
// returned instead.
func Normalize(s string) string {
	lowered := strings.ToLower(s)
	stripped, _, err := transform.String(stripper, lowered)
	if err != nil {
		return lowered
	}
	return stripped
}

// NormalizeKeys returns a copy of table with normalized keys. On key
// collisions after normalization the larger value wins, keeping the
// result deterministic.
func NormalizeKeys(table map[string]float64) map[string]float64 {
	if table == nil {
		return nil
	}
	out := make(map[string]float64, len(table))
	for k, v := range table {
		nk := Normalize(k)
		if existing, ok := out[nk]; !ok || v > existing {
			out[nk] = v
		}
	}
	return out
}

// NormalizeList returns a copy of items with each entry normalized.
func NormalizeList(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = Normalize(item)
	}
	return out
}

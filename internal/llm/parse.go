package llm

import (
	"encoding/json"
	"strings"
)

// Maximum accepted length for a single parsed string field.
const maxFieldChars = 300

// StringsResult is the discriminated outcome of parsing a response that is
// expected to be a JSON array of strings. Pricing logic only ever sees the
// OK branch; a Malformed result is treated as a capability failure by the
// caller.
type StringsResult struct {
	// OK discriminates Ok(Items) from Malformed(Raw).
	OK bool

	// Items holds the validated strings when OK.
	Items []string

	// Raw retains the original response text when malformed, for logs.
	Raw string
}

// CopyFields are the commercial-copy fields an enrichment response may
// carry. All fields are optional in the response; empty fields keep their
// local-template values.
type CopyFields struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Terms    string `json:"terms"`
	Timeline string `json:"timeline"`
}

// CopyResult is the discriminated outcome of parsing an enrichment
// response.
type CopyResult struct {
	OK     bool
	Fields CopyFields
	Raw    string
}

// ParseStringArray validates a response expected to be a JSON array of
// strings. When wantLen is positive the array must have exactly that many
// entries (items map one-to-one onto the concepts that were sent). Every
// entry must be a non-empty string within the field length bound.
func ParseStringArray(raw string, wantLen int) StringsResult {
	malformed := StringsResult{Raw: raw}

	var items []string
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &items); err != nil {
		return malformed
	}
	if len(items) == 0 || (wantLen > 0 && len(items) != wantLen) {
		return malformed
	}

	cleaned := make([]string, len(items))
	for i, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || len(item) > maxFieldChars {
			return malformed
		}
		cleaned[i] = item
	}
	return StringsResult{OK: true, Items: cleaned}
}

// ParseCopy validates a response expected to be a JSON object with the
// known commercial-copy fields. Unknown fields are ignored; an object with
// no usable field at all is malformed.
func ParseCopy(raw string) CopyResult {
	malformed := CopyResult{Raw: raw}

	var fields CopyFields
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &fields); err != nil {
		return malformed
	}

	fields.Title = boundField(fields.Title)
	fields.Summary = boundField(fields.Summary)
	fields.Terms = boundField(fields.Terms)
	fields.Timeline = boundField(fields.Timeline)

	if fields.Title == "" && fields.Summary == "" && fields.Terms == "" && fields.Timeline == "" {
		return malformed
	}
	return CopyResult{OK: true, Fields: fields}
}

// ParseLabel validates a response expected to be a single bare label.
// Providers sometimes wrap the label in quotes or trailing punctuation.
func ParseLabel(raw string) (string, bool) {
	label := strings.TrimSpace(stripCodeFences(raw))
	label = strings.Trim(label, `"'.`)
	label = strings.ToLower(label)
	if label == "" || strings.ContainsAny(label, " \n\t") {
		return "", false
	}
	return label, true
}

// boundField trims a field and rejects oversized values.
func boundField(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxFieldChars*4 {
		return ""
	}
	return s
}

// stripCodeFences removes a surrounding markdown code fence, which chat
// models frequently add around JSON payloads.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

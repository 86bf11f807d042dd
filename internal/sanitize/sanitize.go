// Package sanitize normalizes partial update payloads before they are merged
// into a stored record. The record is edited through a long multi-section
// form; a naive full-object merge would erase previously completed sections
// whenever an unrelated section's default empty state is submitted. The
// sanitizer strips those empty states so a merge can only add or replace
// values, never silently null them out.
package sanitize

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing a temporal string value.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// Sanitize returns a cleaned copy of payload that is safe to merge into a
// stored record. temporal names the fields whose string values are parsed as
// dates; parse failures degrade to field omission. The rules apply per field
// and recursively into nested objects and arrays:
//
//   - nil values are dropped; deletions are never expressed via null
//   - temporal fields keep time.Time values as-is, parse non-empty strings,
//     and are dropped on empty input or parse failure
//   - other string values are dropped when empty or whitespace-only
//   - arrays lose nil elements and have object elements sanitized; an array
//     left empty is dropped
//   - nested objects are sanitized; an object left with zero keys is dropped
//   - everything else passes through unchanged
//
// Sanitize never fails and is idempotent: applying it twice yields the same
// result as applying it once. The input is not modified.
func Sanitize(payload map[string]any, temporal map[string]bool) map[string]any {
	out := make(map[string]any, len(payload))
	for name, value := range payload {
		if cleaned, ok := sanitizeField(name, value, temporal); ok {
			out[name] = cleaned
		}
	}
	return out
}

// sanitizeField cleans a single named value. The second return value reports
// whether the field survives.
func sanitizeField(name string, value any, temporal map[string]bool) (any, bool) {
	if value == nil {
		return nil, false
	}

	if temporal[name] {
		return sanitizeTemporal(value)
	}

	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, false
		}
		return v, true
	case map[string]any:
		cleaned := Sanitize(v, temporal)
		if len(cleaned) == 0 {
			return nil, false
		}
		return cleaned, true
	case []any:
		cleaned := sanitizeSlice(v, temporal)
		if len(cleaned) == 0 {
			return nil, false
		}
		return cleaned, true
	default:
		return value, true
	}
}

// sanitizeTemporal accepts dates as-is and parse-or-drops strings. Any other
// type is dropped: a temporal field holding, say, a number is malformed input.
func sanitizeTemporal(value any) (any, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return nil, false
		}
		return *v, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

// sanitizeSlice drops nil elements and sanitizes object elements. Non-object
// elements other than nil pass through unchanged; element position carries no
// field name, so the temporal set applies only inside object elements.
func sanitizeSlice(values []any, temporal map[string]bool) []any {
	out := make([]any, 0, len(values))
	for _, elem := range values {
		if elem == nil {
			continue
		}
		switch e := elem.(type) {
		case map[string]any:
			cleaned := Sanitize(e, temporal)
			if len(cleaned) == 0 {
				continue
			}
			out = append(out, cleaned)
		case []any:
			cleaned := sanitizeSlice(e, temporal)
			if len(cleaned) == 0 {
				continue
			}
			out = append(out, cleaned)
		default:
			out = append(out, elem)
		}
	}
	return out
}

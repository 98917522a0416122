// Package tuple defines the record type flowing through restriction
// evaluation and query results, plus a canonical JSON encoding used for
// deterministic result snapshots.
package tuple

import (
	"slices"
	"unicode/utf16"
)

// Record is one tuple: a mapping of attribute name to scalar value.
// Values are restricted to string, int64 (and friends), float64, bool,
// and nil for SQL NULL. Nested records or slices are not scalars and are
// rejected by the literal encoder.
type Record map[string]any

// Project returns a copy of the record keeping only the named fields.
// Fields absent from the record are skipped, not materialized as nil.
func (r Record) Project(names []string) Record {
	out := make(Record, len(names))
	for _, n := range names {
		if v, ok := r[n]; ok {
			out[n] = v
		}
	}
	return out
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// SortedKeys returns field names in canonical order (UTF-16 code units,
// RFC 8785). Go's sort.Strings compares UTF-8 bytes which produces a
// different order for strings outside the BMP.
func (r Record) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units as required
// by RFC 8785 canonical JSON. utf16.Encode handles surrogate pairs.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := len(a16)
	if len(b16) < minLen {
		minLen = len(b16)
	}
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	if len(a16) < len(b16) {
		return -1
	}
	if len(a16) > len(b16) {
		return 1
	}
	return 0
}

// IsScalar reports whether v is a value the literal encoder can format.
func IsScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/relq/internal/header"
	"github.com/roach88/relq/internal/tuple"
)

// advisoryRecordLimit is the tuple-set size above which the encoder logs
// an advisory recommending a subquery restriction. Behavior is
// unaffected.
const advisoryRecordLimit = 512

// encodeLiterals renders a non-empty tuple set as a value predicate:
// one AND-group per record, OR-combined across records. Fields follow
// header order for deterministic output; a single record emits its
// group without parentheses.
func (s *session) encodeLiterals(h header.Header, records []tuple.Record) (string, error) {
	if len(records) > advisoryRecordLimit {
		s.log.Warn("large tuple-set restriction, consider a subquery restriction instead",
			"records", len(records), "advisory_limit", advisoryRecordLimit)
	}

	multi := len(records) > 1
	groups := make([]string, 0, len(records))
	for _, rec := range records {
		var terms []string
		for _, a := range h {
			v, ok := rec[a.Name]
			if !ok {
				continue
			}
			if a.Type == header.TypeBlob {
				return "", newCompileError(ErrCodeBlobInRestriction, a.Name,
					"blob attribute in tuple-set restriction")
			}
			lit, err := formatLiteral(a, v)
			if err != nil {
				return "", err
			}
			terms = append(terms, Quote(a.Name)+"="+lit)
		}
		group := strings.Join(terms, " AND ")
		if multi {
			group = "(" + group + ")"
		}
		groups = append(groups, group)
	}
	return strings.Join(groups, " OR "), nil
}

// formatLiteral encodes one scalar for the attribute's type class.
// String-typed attributes are quoted and escaped; numeric and boolean
// values are formatted so they round-trip exactly.
func formatLiteral(a header.Attribute, v any) (string, error) {
	if v == nil {
		return "NULL", nil
	}
	if a.Type == header.TypeString {
		if !tuple.IsScalar(v) {
			return "", newCompileError(ErrCodeNonScalarLiteral, a.Name,
				fmt.Sprintf("cannot encode %T as a string literal", v))
		}
		return quoteString(fmt.Sprint(v)), nil
	}

	switch val := v.(type) {
	case bool:
		if val {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int:
		return strconv.FormatInt(int64(val), 10), nil
	case int8:
		return strconv.FormatInt(int64(val), 10), nil
	case int16:
		return strconv.FormatInt(int64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case string:
		// Trusted, like a raw expression fragment.
		return val, nil
	default:
		return "", newCompileError(ErrCodeNonScalarLiteral, a.Name,
			fmt.Sprintf("cannot encode %T as a literal", v))
	}
}

// quoteString single-quotes s, doubling internal quotes and doubling
// backslashes so the engine's escape processing is neutralized.
func quoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", "''")
	return "'" + s + "'"
}

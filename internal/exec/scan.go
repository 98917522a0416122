package exec

import (
	"database/sql"
	"fmt"
	"slices"

	"github.com/roach88/relq/internal/header"
	"github.com/roach88/relq/internal/tuple"
)

// scanRows reads every row into records keyed by the header's output
// names, and extracts the primary-key fields of each row as a second
// record sequence.
func scanRows(rows *sql.Rows, h header.Header) ([]tuple.Record, []tuple.Record, error) {
	var records, keys []tuple.Record

	raw := make([]any, len(h))
	ptrs := make([]any, len(h))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan row: %w", err)
		}
		rec := make(tuple.Record, len(h))
		key := tuple.Record{}
		for i, a := range h {
			v := convertValue(a, raw[i])
			rec[a.OutName()] = v
			if a.Key {
				key[a.OutName()] = v
			}
		}
		records = append(records, rec)
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, keys, nil
}

// convertValue normalizes driver values: byte slices become strings for
// non-blob attributes, blobs are copied since the driver may reuse the
// buffer.
func convertValue(a header.Attribute, v any) any {
	if b, ok := v.([]byte); ok {
		if a.Type == header.TypeBlob {
			return slices.Clone(b)
		}
		return string(b)
	}
	return v
}

// assignScalar stores a scanned value into one Fetch1 output binding.
func assignScalar(dst, v any) error {
	switch p := dst.(type) {
	case *any:
		*p = v
	case *string:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("cannot assign %T to *string", v)
		}
		*p = s
	case *int64:
		n, ok := v.(int64)
		if !ok {
			return fmt.Errorf("cannot assign %T to *int64", v)
		}
		*p = n
	case *int:
		n, ok := v.(int64)
		if !ok {
			return fmt.Errorf("cannot assign %T to *int", v)
		}
		*p = int(n)
	case *float64:
		switch n := v.(type) {
		case float64:
			*p = n
		case int64:
			*p = float64(n)
		default:
			return fmt.Errorf("cannot assign %T to *float64", v)
		}
	case *bool:
		switch n := v.(type) {
		case bool:
			*p = n
		case int64:
			*p = n != 0
		default:
			return fmt.Errorf("cannot assign %T to *bool", v)
		}
	case *[]byte:
		b, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("cannot assign %T to *[]byte", v)
		}
		*p = b
	default:
		return fmt.Errorf("unsupported output binding %T", dst)
	}
	return nil
}

// assignColumn stores one result column into a FetchN output binding.
func assignColumn(dst any, col []any) error {
	switch p := dst.(type) {
	case *[]any:
		*p = col
	case *[]string:
		out := make([]string, len(col))
		for i, v := range col {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("cannot assign %T to []string element", v)
			}
			out[i] = s
		}
		*p = out
	case *[]int64:
		out := make([]int64, len(col))
		for i, v := range col {
			n, ok := v.(int64)
			if !ok {
				return fmt.Errorf("cannot assign %T to []int64 element", v)
			}
			out[i] = n
		}
		*p = out
	case *[]float64:
		out := make([]float64, len(col))
		for i, v := range col {
			switch n := v.(type) {
			case float64:
				out[i] = n
			case int64:
				out[i] = float64(n)
			default:
				return fmt.Errorf("cannot assign %T to []float64 element", v)
			}
		}
		*p = out
	default:
		return fmt.Errorf("unsupported column binding %T", dst)
	}
	return nil
}

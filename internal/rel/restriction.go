package rel

import (
	"github.com/roach88/relq/internal/tuple"
)

// Restriction is one entry of a node's restriction list. The interface
// is sealed: raw expressions, tuple sets, the negation token, and nodes
// (subquery semijoin, union, negation) implement it.
type Restriction interface {
	restriction() // sealed
}

// Raw is a trusted SQL boolean expression inserted verbatim.
type Raw string

func (Raw) restriction() {}

// Tuples is an accepted-value set: the restriction holds for a row that
// equals one of the records on their common fields.
type Tuples []tuple.Record

func (Tuples) restriction() {}

// Not is the negation token. It applies to exactly the next restriction
// value in the list, then resets.
type Not struct{}

func (Not) restriction() {}

// coerceRestriction converts caller-supplied shapes into Restriction
// values. Nodes pass through unchanged since they implement Restriction
// themselves.
func coerceRestriction(v any) (Restriction, error) {
	switch val := v.(type) {
	case Restriction:
		return val, nil
	case string:
		return Raw(val), nil
	case tuple.Record:
		return Tuples{val}, nil
	case map[string]any:
		return Tuples{tuple.Record(val)}, nil
	case []tuple.Record:
		return Tuples(val), nil
	case []map[string]any:
		ts := make(Tuples, len(val))
		for i, m := range val {
			ts[i] = tuple.Record(m)
		}
		return ts, nil
	default:
		return nil, newShapeErrorf("cannot interpret %T as a restriction", v)
	}
}

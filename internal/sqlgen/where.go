package sqlgen

import (
	"strings"

	"github.com/roach88/relq/internal/header"
	"github.com/roach88/relq/internal/rel"
	"github.com/roach88/relq/internal/tuple"
)

// clauseFalse is the clause emitted for a restriction that matches
// nothing. Clauses that match everything are dropped entirely, so an
// empty restriction list never produces a WHERE keyword.
const clauseFalse = "FALSE"

// whereClause AND-combines a node's restriction list against its
// (alias-free) header. A Not token negates exactly the next restriction
// value, then resets.
func (s *session) whereClause(h header.Header, rs []rel.Restriction) (string, error) {
	var parts []string
	negated := false
	for _, r := range rs {
		if _, ok := r.(rel.Not); ok {
			negated = true
			continue
		}
		clause, err := s.evalRestriction(h, r, negated)
		negated = false
		if err != nil {
			return "", err
		}
		if clause == "" {
			continue
		}
		parts = append(parts, clause)
	}
	return strings.Join(parts, " AND "), nil
}

// evalRestriction renders one restriction value. An empty return means
// the restriction matches everything and contributes nothing.
func (s *session) evalRestriction(h header.Header, r rel.Restriction, negated bool) (string, error) {
	switch v := r.(type) {
	case rel.Raw:
		if negated {
			return "NOT(" + string(v) + ")", nil
		}
		return string(v), nil

	case rel.Tuples:
		return s.evalTuples(h, v, negated)

	case *rel.UnionNode:
		return s.evalUnion(h, v, negated)

	case *rel.NegationNode:
		inner, err := s.whereClause(h, v.Child.Restrictions())
		if err != nil {
			return "", err
		}
		if inner == "" {
			// NOT over an unconditioned child matches nothing.
			if negated {
				return "", nil
			}
			return clauseFalse, nil
		}
		if negated {
			// Double negation cancels.
			return inner, nil
		}
		return "NOT(" + inner + ")", nil

	case rel.Node:
		return s.evalSubquery(h, v, negated)

	default:
		return "", newCompileError(ErrCodeInvalidStandaloneOperator, "",
			"negation token is not a restriction value here")
	}
}

// evalTuples renders an accepted-value set. The empty-operand policy is
// deliberately asymmetric:
//
//   - zero records: a semijoin matches nothing, an antijoin everything;
//   - records present but sharing no field with the header: a semijoin
//     matches everything, an antijoin nothing.
func (s *session) evalTuples(h header.Header, ts rel.Tuples, negated bool) (string, error) {
	if len(ts) == 0 {
		if negated {
			return "", nil
		}
		return clauseFalse, nil
	}

	names := h.Names()
	projected := make([]tuple.Record, 0, len(ts))
	anyEmpty := false
	for _, rec := range ts {
		p := rec.Project(names)
		if len(p) == 0 {
			anyEmpty = true
		}
		projected = append(projected, p)
	}
	if anyEmpty {
		// A record with no common fields accepts every row, which
		// absorbs the whole OR-group.
		if negated {
			return clauseFalse, nil
		}
		return "", nil
	}

	enc, err := s.encodeLiterals(h, projected)
	if err != nil {
		return "", err
	}
	if negated {
		return "NOT(" + enc + ")", nil
	}
	return enc, nil
}

// evalSubquery renders a semijoin (or antijoin when negated) against
// another relvar as a row-value IN over the common non-blob columns.
func (s *session) evalSubquery(h header.Header, n rel.Node, negated bool) (string, error) {
	ih, ifrag, _, err := s.compile(n, EncloseUnlessBase)
	if err != nil {
		return "", err
	}

	// An unrestricted projection or aggregation may still expose pending
	// computed columns; materialize them before referencing.
	switch n.(type) {
	case *rel.ProjectNode, *rel.AggregateNode:
		if len(n.Restrictions()) == 0 && ih.HasAliases() {
			ifrag = s.wrap(ih, ifrag)
			ih = ih.StripAliases()
		}
	}

	var common []string
	for _, a := range h {
		if a.Type == header.TypeBlob {
			continue
		}
		if i := ih.Index(a.Name); i >= 0 && ih[i].Type != header.TypeBlob {
			common = append(common, a.Name)
		}
	}
	if len(common) == 0 {
		if negated {
			return clauseFalse, nil
		}
		return "", nil
	}

	cols := quotedList(common)
	op := " IN "
	if negated {
		op = " NOT IN "
	}
	return "(" + cols + ")" + op + "(SELECT " + cols + " FROM " + ifrag + ")", nil
}

// evalUnion OR-combines the operands, each evaluated as an independent
// restriction-of-one against the same header.
func (s *session) evalUnion(h header.Header, u *rel.UnionNode, negated bool) (string, error) {
	var parts []string
	for _, op := range u.Operands {
		clause, err := s.evalRestriction(h, op, false)
		if err != nil {
			return "", err
		}
		if clause == "" {
			// An operand matching everything absorbs the group.
			if negated {
				return clauseFalse, nil
			}
			return "", nil
		}
		if clause == clauseFalse {
			continue
		}
		parts = append(parts, clause)
	}
	if len(parts) == 0 {
		if negated {
			return "", nil
		}
		return clauseFalse, nil
	}
	group := strings.Join(parts, " OR ")
	if negated {
		return "NOT(" + group + ")", nil
	}
	return "(" + group + ")", nil
}

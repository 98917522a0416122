// Package sqlgen compiles relvar operator trees into single SQL
// statements for the target engine: backquoted identifiers, NATURAL
// JOIN, and row-value IN subqueries.
//
// Compilation walks the tree bottom-up. Each node yields a (header,
// FROM-fragment) pair; the node's restriction list is evaluated into a
// WHERE clause over that header, and an enclosure rule decides whether
// the fragment is wrapped as a named subquery before the parent consumes
// it. Wrapping materializes pending rename/compute aliases, so WHERE
// field references always resolve to real column names.
package sqlgen

import (
	"fmt"
	"log/slog"

	"github.com/roach88/relq/internal/header"
	"github.com/roach88/relq/internal/rel"
)

// EncloseMode selects the enclosure rule applied after a node's
// restrictions have been evaluated.
type EncloseMode int

const (
	// EncloseNever leaves the fragment bare.
	EncloseNever EncloseMode = iota

	// EncloseAliased wraps only when the result still carries pending
	// aliases.
	EncloseAliased

	// EncloseUnlessBase wraps unless the node is a bare table or an
	// unrestricted join, whose fragments compose without help.
	EncloseUnlessBase

	// EncloseAggregate wraps only aggregates, whose GROUP BY must not
	// leak into the consuming statement.
	EncloseAggregate
)

// aliasPrefix starts every generated subquery alias. The counter is
// hex-formatted, so aliases read rv1, rv2, ... rva, rvb within one
// compiled statement.
const aliasPrefix = "rv"

// session is the compilation context for one statement. Owning the
// alias counter here, rather than in process state, keeps concurrent
// compilations independent.
type session struct {
	aliases uint64
	log     *slog.Logger
}

func (s *session) nextAlias() string {
	s.aliases++
	return fmt.Sprintf("%s%x", aliasPrefix, s.aliases)
}

// wrap encloses a fragment as a named subquery that exposes the
// header's pending aliases as real columns. Callers strip the header's
// aliases afterwards.
func (s *session) wrap(h header.Header, frag string) string {
	return "(SELECT " + SelectList(h) + " FROM " + frag + ") AS " + s.nextAlias()
}

// Compile walks the tree rooted at n and returns the resulting header
// and FROM-fragment. The fragment may carry a trailing WHERE; consumers
// embed it after the FROM keyword of their own statement.
func Compile(n rel.Node, mode EncloseMode) (header.Header, string, error) {
	s := &session{log: slog.Default()}
	h, frag, _, err := s.compile(n, mode)
	return h, frag, err
}

// compile returns the node's header and FROM-fragment plus whether the
// fragment already ends in a top-level WHERE. An unenclosed restricted
// fragment can only surface through the projection path; its consumer
// must wrap it before appending a WHERE of its own.
func (s *session) compile(n rel.Node, mode EncloseMode) (header.Header, string, bool, error) {
	var h header.Header
	var frag string
	restricted := false

	switch v := n.(type) {
	case *rel.TableNode:
		h = v.Table.Header.StripAliases()
		frag = v.Table.Qualified

	case *rel.ProjectNode:
		ch, cf, cr, err := s.compile(v.Child, EncloseAliased)
		if err != nil {
			return nil, "", false, err
		}
		h, err = ch.Project(v.Specs)
		if err != nil {
			return nil, "", false, err
		}
		frag = cf
		restricted = cr

	case *rel.JoinNode:
		lh, lf, _, err := s.compile(v.Left, EncloseUnlessBase)
		if err != nil {
			return nil, "", false, err
		}
		rh, rf, _, err := s.compile(v.Right, EncloseUnlessBase)
		if err != nil {
			return nil, "", false, err
		}
		h, err = header.Join(lh, rh)
		if err != nil {
			return nil, "", false, err
		}
		frag = lf + " NATURAL JOIN " + rf

	case *rel.AggregateNode:
		lh, lf, _, err := s.compile(v.Source, EncloseUnlessBase)
		if err != nil {
			return nil, "", false, err
		}
		rh, rf, _, err := s.compile(v.Detail, EncloseUnlessBase)
		if err != nil {
			return nil, "", false, err
		}
		if shared := sharedBlob(lh, rh); shared != "" {
			return nil, "", false, newCompileError(ErrCodeBlobJoinKey, shared,
				"blob attribute shared between aggregate source and detail")
		}
		h, err = lh.Project(v.Specs)
		if err != nil {
			return nil, "", false, err
		}
		if !h.HasAliases() {
			return nil, "", false, newCompileError(ErrCodeAggregateRequiresComputation, "",
				"aggregate specs contain no compute expression")
		}
		frag = lf + " NATURAL JOIN " + rf + " GROUP BY " + quotedList(lh.PrimaryKey())

	case *rel.UnionNode:
		return nil, "", false, newCompileError(ErrCodeInvalidStandaloneOperator, "union",
			"union is only valid as a restriction value")

	case *rel.NegationNode:
		return nil, "", false, newCompileError(ErrCodeInvalidStandaloneOperator, "negation",
			"negation is only valid as a restriction value")

	default:
		return nil, "", false, newCompileError(ErrCodeInvalidStandaloneOperator,
			fmt.Sprintf("%T", n), "unknown operator node")
	}

	// Restriction step. Field references must resolve to real columns,
	// so a header still carrying aliases is materialized first. A
	// fragment that already ends in a WHERE is materialized too; a
	// statement admits only one top-level WHERE clause.
	rs := n.Restrictions()
	if len(rs) > 0 && (h.HasAliases() || restricted) {
		frag = s.wrap(h, frag)
		h = h.StripAliases()
		restricted = false
	}
	where, err := s.whereClause(h, rs)
	if err != nil {
		return nil, "", false, err
	}
	if where != "" {
		frag += " WHERE " + where
		restricted = true
	}

	// Enclosure step, evaluated against the post-restriction state.
	enclose := false
	switch mode {
	case EncloseNever:
	case EncloseAliased:
		enclose = h.HasAliases()
	case EncloseUnlessBase:
		switch n.(type) {
		case *rel.TableNode, *rel.JoinNode:
			enclose = len(rs) > 0
		default:
			enclose = true
		}
	case EncloseAggregate:
		_, enclose = n.(*rel.AggregateNode)
	}
	if enclose {
		frag = s.wrap(h, frag)
		h = h.StripAliases()
		restricted = false
	}
	return h, frag, restricted, nil
}

// sharedBlob returns the first blob attribute name present in both
// headers, or "" when none.
func sharedBlob(h1, h2 header.Header) string {
	for _, name := range h1.BlobNames() {
		if h2.Index(name) >= 0 {
			return name
		}
	}
	for _, name := range h2.BlobNames() {
		if i := h1.Index(name); i >= 0 {
			return name
		}
	}
	return ""
}

// Package rel defines relvars: operator trees built from table leaves by
// composing projection, natural join, aggregation, union, negation and
// restriction.
//
// Trees are value-semantic. Every deriving combinator clones its
// receiver, so two relvars never share a restriction list; the only
// in-place mutation is Restrict, which appends to the receiver's own
// list. A constructed tree is therefore safe for concurrent read access,
// and Restrict is the sole operation that requires exclusive access.
package rel

import (
	"github.com/roach88/relq/internal/header"
)

// Table is the borrowed metadata of a base relation: its catalog name,
// its fully-qualified SQL name and its header. Leaf nodes reference a
// Table, they never own or mutate it.
type Table struct {
	Name      string
	Qualified string
	Comment   string
	Header    header.Header
}

// Node is a relvar: one operator in the tree. The interface is sealed;
// only the node types in this package implement it. Every node also
// satisfies Restriction, so any relvar can be used as a semijoin operand
// in another relvar's restriction list.
type Node interface {
	Restriction
	node() // sealed

	// Restrictions returns the node's own restriction list in append
	// order. The list is AND-combined at compile time.
	Restrictions() []Restriction

	// Restrict appends restriction values in place. Accepted shapes:
	// string (raw SQL boolean expression), tuple.Record or
	// map[string]any (single-record tuple set), []tuple.Record,
	// Restriction values, and Nodes (subquery semijoin). Anything else
	// fails with MULTI_RESTRICTION_SHAPE, as does a batch ending in a
	// Not token with no value following it.
	//
	// Restrict is the one mutation on an otherwise immutable tree. Do
	// not call it on a relvar that another goroutine is compiling.
	Restrict(vals ...any) error

	// Clone returns a copy whose restriction lists (its own and its
	// children's) are independent of the receiver. Table metadata stays
	// shared.
	Clone() Node
}

// restrictable carries the restriction list shared by all node types.
type restrictable struct {
	rs []Restriction
}

func (b *restrictable) Restrictions() []Restriction { return b.rs }

func (b *restrictable) Restrict(vals ...any) error {
	coerced := make([]Restriction, 0, len(vals))
	for _, v := range vals {
		r, err := coerceRestriction(v)
		if err != nil {
			return err
		}
		coerced = append(coerced, r)
	}
	// A negation token applies to the next value, so a batch may not
	// end with one.
	if len(coerced) > 0 {
		if _, ok := coerced[len(coerced)-1].(Not); ok {
			return newShapeError("negation token must precede a restriction value")
		}
	}
	b.rs = append(b.rs, coerced...)
	return nil
}

func (b *restrictable) cloneList() restrictable {
	if b.rs == nil {
		return restrictable{}
	}
	rs := make([]Restriction, len(b.rs))
	copy(rs, b.rs)
	return restrictable{rs: rs}
}

// TableNode is a leaf referencing a base table.
type TableNode struct {
	restrictable
	Table *Table
}

// ProjectNode applies attribute specifiers to one child.
type ProjectNode struct {
	restrictable
	Child Node
	Specs []string
}

// AggregateNode is a projection with grouping: Source supplies the
// grouping key and surviving attributes, Detail supplies the rows the
// aggregate expressions range over.
type AggregateNode struct {
	restrictable
	Source Node
	Detail Node
	Specs  []string
}

// JoinNode pairs two children with a natural join.
type JoinNode struct {
	restrictable
	Left  Node
	Right Node
}

// UnionNode OR-combines two or more restriction operands. It is only
// valid as a restriction value; compiling one standalone fails.
type UnionNode struct {
	restrictable
	Operands []Restriction
}

// NegationNode inverts one child's restriction list. Like UnionNode it
// is only valid as a restriction value.
type NegationNode struct {
	restrictable
	Child Node
}

func (*TableNode) node()     {}
func (*ProjectNode) node()   {}
func (*AggregateNode) node() {}
func (*JoinNode) node()      {}
func (*UnionNode) node()     {}
func (*NegationNode) node()  {}

func (*TableNode) restriction()     {}
func (*ProjectNode) restriction()   {}
func (*AggregateNode) restriction() {}
func (*JoinNode) restriction()      {}
func (*UnionNode) restriction()     {}
func (*NegationNode) restriction()  {}

func (n *TableNode) Clone() Node {
	return &TableNode{restrictable: n.cloneList(), Table: n.Table}
}

func (n *ProjectNode) Clone() Node {
	return &ProjectNode{restrictable: n.cloneList(), Child: n.Child.Clone(), Specs: n.Specs}
}

func (n *AggregateNode) Clone() Node {
	return &AggregateNode{
		restrictable: n.cloneList(),
		Source:       n.Source.Clone(),
		Detail:       n.Detail.Clone(),
		Specs:        n.Specs,
	}
}

func (n *JoinNode) Clone() Node {
	return &JoinNode{restrictable: n.cloneList(), Left: n.Left.Clone(), Right: n.Right.Clone()}
}

func (n *UnionNode) Clone() Node {
	ops := make([]Restriction, len(n.Operands))
	copy(ops, n.Operands)
	return &UnionNode{restrictable: n.cloneList(), Operands: ops}
}

func (n *NegationNode) Clone() Node {
	return &NegationNode{restrictable: n.cloneList(), Child: n.Child.Clone()}
}

// From creates a leaf relvar over a base table.
func From(t *Table) *TableNode {
	return &TableNode{Table: t}
}

// Where derives a conjunctively restricted relvar. The receiver is
// cloned first; its own restriction list is untouched.
func Where(n Node, vals ...any) (Node, error) {
	c := n.Clone()
	if err := c.Restrict(vals...); err != nil {
		return nil, err
	}
	return c, nil
}

// Minus derives an antijoin: tuples of n with no match in val.
func Minus(n Node, val any) (Node, error) {
	c := n.Clone()
	if err := c.Restrict(Not{}, val); err != nil {
		return nil, err
	}
	return c, nil
}

// Project derives a projection/rename/compute of n.
func Project(n Node, specs ...string) *ProjectNode {
	return &ProjectNode{Child: n.Clone(), Specs: specs}
}

// Times derives the natural join of two relvars.
func Times(left, right Node) *JoinNode {
	return &JoinNode{Left: left.Clone(), Right: right.Clone()}
}

// Summarize derives a grouped projection of source: one result tuple per
// source primary-key value, with compute specs free to apply SQL
// aggregate functions over the naturally joined detail rows.
func Summarize(source, detail Node, specs ...string) *AggregateNode {
	return &AggregateNode{Source: source.Clone(), Detail: detail.Clone(), Specs: specs}
}

// Union builds a union restriction from two or more operands. Operands
// accept the same shapes as Restrict. A union operand is absorbed:
// its operands are spliced in, so unions never nest.
func Union(ops ...any) (*UnionNode, error) {
	var flat []Restriction
	for _, o := range ops {
		r, err := coerceRestriction(o)
		if err != nil {
			return nil, err
		}
		if _, ok := r.(Not); ok {
			return nil, newShapeError("negation token is not a union operand")
		}
		if u, ok := r.(*UnionNode); ok {
			flat = append(flat, u.Operands...)
			continue
		}
		flat = append(flat, r)
	}
	if len(flat) < 2 {
		return nil, newShapeError("union requires at least two operands")
	}
	return &UnionNode{Operands: flat}, nil
}

// Negate wraps a relvar in a negation. Negating a negation returns the
// original child, not a double wrapper.
func Negate(n Node) Node {
	if neg, ok := n.(*NegationNode); ok {
		return neg.Child
	}
	return &NegationNode{Child: n}
}

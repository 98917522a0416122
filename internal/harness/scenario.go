// Package harness runs declarative query scenarios: a YAML file names a
// catalog, describes an operator pipeline, and optionally sets up a
// database to execute against. Scenarios drive the golden-file tests
// that pin down compiled statement text and result sets.
package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/relq/internal/catalog"
	"github.com/roach88/relq/internal/rel"
)

// Scenario is one declarative query test case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden files.
	Name string `yaml:"name"`

	// Description explains what this scenario pins down.
	Description string `yaml:"description,omitempty"`

	// Catalog is the directory of CUE table definitions, relative to
	// the scenario file.
	Catalog string `yaml:"catalog"`

	// Query is the operator pipeline to build and compile.
	Query QuerySpec `yaml:"query"`

	// Fetch lists attribute specifiers for the final projection. Empty
	// fetches the primary key only.
	Fetch []string `yaml:"fetch,omitempty"`

	// Suffix is an optional verbatim ORDER BY/LIMIT tail.
	Suffix string `yaml:"suffix,omitempty"`

	// Setup holds SQL statements preparing an in-memory database. When
	// present the scenario also executes the query and snapshots the
	// results.
	Setup []string `yaml:"setup,omitempty"`

	// dir is the directory the scenario was loaded from.
	dir string
}

// QuerySpec describes a relvar: a base table plus a pipeline of
// operator applications. Operand queries nest recursively.
type QuerySpec struct {
	From string   `yaml:"from"`
	Ops  []OpSpec `yaml:"ops,omitempty"`
}

// OpSpec is one pipeline step. Exactly one field may be set.
type OpSpec struct {
	// Project applies attribute specifiers.
	Project []string `yaml:"project,omitempty"`

	// Where appends a raw boolean expression restriction.
	Where string `yaml:"where,omitempty"`

	// Tuples appends an accepted-value-set restriction.
	Tuples []map[string]any `yaml:"tuples,omitempty"`

	// Semijoin restricts to rows with a match in the operand.
	Semijoin *QuerySpec `yaml:"semijoin,omitempty"`

	// Minus restricts to rows without a match in the operand.
	Minus *QuerySpec `yaml:"minus,omitempty"`

	// Join pairs with the operand via natural join.
	Join *QuerySpec `yaml:"join,omitempty"`

	// Summarize groups over the receiver's primary key, aggregating the
	// detail operand.
	Summarize *SummarizeSpec `yaml:"summarize,omitempty"`

	// Union OR-combines restriction operands.
	Union []UnionOperand `yaml:"union,omitempty"`
}

// SummarizeSpec names the detail relvar and the aggregate specs.
type SummarizeSpec struct {
	Detail QuerySpec `yaml:"detail"`
	Specs  []string  `yaml:"specs"`
}

// UnionOperand is one operand of a union restriction: a raw expression,
// a tuple set, or a nested query.
type UnionOperand struct {
	Where  string           `yaml:"where,omitempty"`
	Tuples []map[string]any `yaml:"tuples,omitempty"`
	Query  *QuerySpec       `yaml:"query,omitempty"`
}

// LoadScenario reads and validates one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if s.Catalog == "" {
		return nil, fmt.Errorf("scenario %s: catalog is required", path)
	}
	if s.Query.From == "" {
		return nil, fmt.Errorf("scenario %s: query.from is required", path)
	}
	s.dir = filepath.Dir(path)
	return &s, nil
}

// LoadCatalog loads the scenario's catalog directory.
func (s *Scenario) LoadCatalog() (*catalog.Catalog, error) {
	return catalog.Load(filepath.Join(s.dir, s.Catalog))
}

// Build constructs the scenario's relvar against a loaded catalog.
func (s *Scenario) Build(cat *catalog.Catalog) (rel.Node, error) {
	return buildQuery(cat, &s.Query)
}

func buildQuery(cat *catalog.Catalog, q *QuerySpec) (rel.Node, error) {
	t, ok := cat.Table(q.From)
	if !ok {
		return nil, fmt.Errorf("unknown table %q", q.From)
	}
	var node rel.Node = rel.From(t)

	for i, op := range q.Ops {
		next, err := applyOp(cat, node, &op)
		if err != nil {
			return nil, fmt.Errorf("op %d on %q: %w", i, q.From, err)
		}
		node = next
	}
	return node, nil
}

func applyOp(cat *catalog.Catalog, node rel.Node, op *OpSpec) (rel.Node, error) {
	switch {
	case op.Project != nil:
		return rel.Project(node, op.Project...), nil

	case op.Where != "":
		return rel.Where(node, op.Where)

	case op.Tuples != nil:
		return rel.Where(node, op.Tuples)

	case op.Semijoin != nil:
		sub, err := buildQuery(cat, op.Semijoin)
		if err != nil {
			return nil, err
		}
		return rel.Where(node, sub)

	case op.Minus != nil:
		sub, err := buildQuery(cat, op.Minus)
		if err != nil {
			return nil, err
		}
		return rel.Minus(node, sub)

	case op.Join != nil:
		other, err := buildQuery(cat, op.Join)
		if err != nil {
			return nil, err
		}
		return rel.Times(node, other), nil

	case op.Summarize != nil:
		detail, err := buildQuery(cat, &op.Summarize.Detail)
		if err != nil {
			return nil, err
		}
		return rel.Summarize(node, detail, op.Summarize.Specs...), nil

	case op.Union != nil:
		ops := make([]any, 0, len(op.Union))
		for _, u := range op.Union {
			switch {
			case u.Where != "":
				ops = append(ops, u.Where)
			case u.Tuples != nil:
				ops = append(ops, u.Tuples)
			case u.Query != nil:
				sub, err := buildQuery(cat, u.Query)
				if err != nil {
					return nil, err
				}
				ops = append(ops, sub)
			default:
				return nil, fmt.Errorf("empty union operand")
			}
		}
		union, err := rel.Union(ops...)
		if err != nil {
			return nil, err
		}
		return rel.Where(node, union)

	default:
		return nil, fmt.Errorf("empty operator spec")
	}
}

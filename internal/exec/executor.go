// Package exec is the query-execution surface: it compiles relvars into
// single statements and issues them against the store, one blocking
// round-trip per operation. Retries, pooling and cancellation policy
// belong to the transport, not here.
package exec

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/relq/internal/rel"
	"github.com/roach88/relq/internal/sqlgen"
	"github.com/roach88/relq/internal/store"
	"github.com/roach88/relq/internal/tuple"
)

// Executor runs compiled queries against a store. Zero-value fields are
// filled with defaults by New.
type Executor struct {
	Store  *store.Store
	Log    *slog.Logger
	Tokens TokenGenerator
}

// New creates an executor with the default logger and UUIDv7 statement
// tokens.
func New(st *store.Store) *Executor {
	return &Executor{
		Store:  st,
		Log:    slog.Default(),
		Tokens: UUIDv7Generator{},
	}
}

// Result is one Fetch result set: output attribute names in select-list
// order, the matching records, and the primary-key fields of each
// record.
type Result struct {
	Attrs []string
	Rows  []tuple.Record
	Keys  []tuple.Record
}

// Exists reports whether the relvar matches at least one row.
func (e *Executor) Exists(ctx context.Context, rv rel.Node) (bool, error) {
	_, frag, err := sqlgen.Compile(rv, sqlgen.EncloseAggregate)
	if err != nil {
		return false, err
	}
	stmt := "SELECT EXISTS(SELECT 1 FROM " + frag + " LIMIT 1)"
	e.trace("exists", stmt)

	var n int64
	if err := e.Store.QueryRow(ctx, stmt).Scan(&n); err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return n != 0, nil
}

// Count returns the number of rows the relvar matches.
func (e *Executor) Count(ctx context.Context, rv rel.Node) (int64, error) {
	_, frag, err := sqlgen.Compile(rv, sqlgen.EncloseAggregate)
	if err != nil {
		return 0, err
	}
	stmt := "SELECT COUNT(*) FROM " + frag
	e.trace("count", stmt)

	var n int64
	if err := e.Store.QueryRow(ctx, stmt).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Fetch retrieves records. Arguments are attribute specifiers, with the
// trailing-argument convention for an ORDER BY/LIMIT suffix. No
// specifiers fetches the primary key only; "*" fetches everything.
func (e *Executor) Fetch(ctx context.Context, rv rel.Node, args ...any) (*Result, error) {
	rest, suffix := splitTail(args)
	specs, err := specStrings(rest)
	if err != nil {
		return nil, err
	}
	return e.fetch(ctx, rv, specs, suffix)
}

func (e *Executor) fetch(ctx context.Context, rv rel.Node, specs []string, suffix string) (*Result, error) {
	proj := rel.Project(rv, specs...)
	h, frag, err := sqlgen.Compile(proj, sqlgen.EncloseAggregate)
	if err != nil {
		return nil, err
	}

	stmt := "SELECT " + sqlgen.SelectList(h) + " FROM " + frag
	if suffix != "" {
		stmt += " " + suffix
	}
	e.trace("fetch", stmt)

	rows, err := e.Store.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer rows.Close()

	records, keys, err := scanRows(rows, h)
	if err != nil {
		return nil, err
	}

	attrs := make([]string, len(h))
	for i, a := range h {
		attrs[i] = a.OutName()
	}
	return &Result{Attrs: attrs, Rows: records, Keys: keys}, nil
}

// Fetch1 retrieves exactly one record into scalar output bindings.
// Leading arguments are attribute specifiers, trailing arguments are
// pointers receiving the values; counts must match and the wildcard is
// not allowed. Zero or multiple matching records fail with NOT_SCALAR.
func (e *Executor) Fetch1(ctx context.Context, rv rel.Node, args ...any) error {
	rest, suffix := splitTail(args)
	specs, outs, err := splitSpecsOutputs(rest)
	if err != nil {
		return err
	}
	for _, s := range specs {
		if s == "*" {
			return newSurfaceError(ErrCodeArityMismatch, "wildcard is not allowed in Fetch1")
		}
	}
	if len(specs) == 0 || len(specs) != len(outs) {
		return newSurfaceError(ErrCodeArityMismatch,
			"%d attribute specifiers for %d output bindings", len(specs), len(outs))
	}

	res, err := e.fetch(ctx, rv, specs, suffix)
	if err != nil {
		return err
	}
	if len(res.Rows) != 1 {
		return newSurfaceError(ErrCodeNotScalar, "expected exactly one record, got %d", len(res.Rows))
	}

	rec := res.Rows[0]
	for i, spec := range specs {
		if err := assignScalar(outs[i], rec[specTarget(spec)]); err != nil {
			return err
		}
	}
	return nil
}

// FetchN retrieves column-oriented results: one slice binding per
// requested attribute, in order. Returns the primary-key fields of the
// matching records.
func (e *Executor) FetchN(ctx context.Context, rv rel.Node, args ...any) ([]tuple.Record, error) {
	rest, suffix := splitTail(args)
	specs, outs, err := splitSpecsOutputs(rest)
	if err != nil {
		return nil, err
	}
	for _, s := range specs {
		if s == "*" {
			return nil, newSurfaceError(ErrCodeArityMismatch, "wildcard is not allowed in FetchN")
		}
	}
	if len(specs) == 0 || len(specs) != len(outs) {
		return nil, newSurfaceError(ErrCodeArityMismatch,
			"%d attribute specifiers for %d column bindings", len(specs), len(outs))
	}

	res, err := e.fetch(ctx, rv, specs, suffix)
	if err != nil {
		return nil, err
	}

	for i, spec := range specs {
		name := specTarget(spec)
		col := make([]any, len(res.Rows))
		for j, rec := range res.Rows {
			col[j] = rec[name]
		}
		if err := assignColumn(outs[i], col); err != nil {
			return nil, err
		}
	}
	return res.Keys, nil
}

// trace logs one statement with its token before it is issued.
func (e *Executor) trace(op, stmt string) {
	e.Log.Debug("issuing statement", "op", op, "token", e.Tokens.Generate(), "sql", stmt)
}

package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/relq/internal/exec"
	"github.com/roach88/relq/internal/rel"
	"github.com/roach88/relq/internal/sqlgen"
	"github.com/roach88/relq/internal/store"
	"github.com/roach88/relq/internal/tuple"
)

// CompileStatement builds the scenario's relvar and compiles the fetch
// statement exactly the way the execution surface does: a final
// projection (primary key when the fetch list is empty), aggregate
// enclosure, select list from the resulting header, optional suffix.
func CompileStatement(s *Scenario) (string, error) {
	cat, err := s.LoadCatalog()
	if err != nil {
		return "", err
	}
	node, err := s.Build(cat)
	if err != nil {
		return "", err
	}

	proj := rel.Project(node, s.Fetch...)
	h, frag, err := sqlgen.Compile(proj, sqlgen.EncloseAggregate)
	if err != nil {
		return "", err
	}
	stmt := "SELECT " + sqlgen.SelectList(h) + " FROM " + frag
	if s.Suffix != "" {
		stmt += " " + s.Suffix
	}
	return stmt, nil
}

// RunGolden compiles the scenario and compares the statement text
// against testdata/<name>.golden. Scenarios with setup statements are
// additionally executed against an in-memory database, and the result
// records are compared canonically against testdata/<name>_rows.golden.
//
// Regenerate golden files with:
//
//	go test ./internal/harness -update
func RunGolden(t *testing.T, s *Scenario) {
	t.Helper()
	g := goldie.New(t)

	stmt, err := CompileStatement(s)
	if err != nil {
		t.Fatalf("compile scenario %s: %v", s.Name, err)
	}
	g.Assert(t, s.Name, []byte(stmt))

	if len(s.Setup) == 0 {
		return
	}

	ctx := context.Background()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	for _, sql := range s.Setup {
		if err := st.Exec(ctx, sql); err != nil {
			t.Fatalf("setup %q: %v", sql, err)
		}
	}

	cat, err := s.LoadCatalog()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	node, err := s.Build(cat)
	if err != nil {
		t.Fatalf("build query: %v", err)
	}

	ex := exec.New(st)
	ex.Tokens = exec.NewFixedGenerator(fixedTokens(s.Name)...)

	args := make([]any, 0, len(s.Fetch)+1)
	for _, f := range s.Fetch {
		args = append(args, f)
	}
	if s.Suffix != "" {
		args = append(args, s.Suffix)
	}
	res, err := ex.Fetch(ctx, node, args...)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	snapshot, err := tuple.MarshalCanonical(res.Rows)
	if err != nil {
		t.Fatalf("snapshot results: %v", err)
	}
	g.Assert(t, s.Name+"_rows", snapshot)
}

// fixedTokens returns enough deterministic statement tokens for one
// scenario run.
func fixedTokens(name string) []string {
	out := make([]string, 8)
	for i := range out {
		out[i] = name + "-stmt"
	}
	return out
}

package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/relq/internal/store"
)

// writeCatalog writes one CUE file into a fresh directory and returns
// the directory path.
func writeCatalog(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.cue"), []byte(src), 0o644))
	return dir
}

// seedDatabase creates the shop fixture tables at the given path.
func seedDatabase(t *testing.T, path string) {
	t.Helper()
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	setup := []string{
		"CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT NOT NULL, price REAL NOT NULL)",
		"CREATE TABLE orders (order_id INTEGER PRIMARY KEY, id INTEGER NOT NULL, total REAL NOT NULL)",
		"INSERT INTO products (id, name, price) VALUES (1, 'anvil', 9.5), (2, 'rope', 2.0), (3, 'dynamite', 25.0)",
		"INSERT INTO orders (order_id, id, total) VALUES (10, 1, 19.0), (11, 1, 9.5), (12, 3, 25.0)",
	}
	for _, stmt := range setup {
		require.NoError(t, st.Exec(ctx, stmt))
	}
}

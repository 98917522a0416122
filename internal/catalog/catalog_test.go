package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/relq/internal/header"
)

const productsCUE = `
table: products: {
	source:  "shop.products"
	comment: "product master data"
	attr: {
		id:    {type: "numeric", key: true}
		name:  {type: "string", comment: "display name"}
		price: {type: "numeric", nullable: true, default: "0"}
		image: {type: "blob", nullable: true}
	}
}
`

func compileString(t *testing.T, src string) (*Catalog, error) {
	t.Helper()
	ctx := cuecontext.New()
	value := ctx.CompileString(src)
	require.NoError(t, value.Err())
	return Compile(value)
}

func TestCompile_SingleTable(t *testing.T) {
	c, err := compileString(t, productsCUE)
	require.NoError(t, err)

	assert.Equal(t, []string{"products"}, c.Names())

	tbl, ok := c.Table("products")
	require.True(t, ok)
	assert.Equal(t, "products", tbl.Name)
	assert.Equal(t, "shop.products", tbl.Qualified)
	assert.Equal(t, "product master data", tbl.Comment)

	// Declaration order becomes header order.
	require.Equal(t, []string{"id", "name", "price", "image"}, tbl.Header.Names())

	id := tbl.Header[0]
	assert.Equal(t, header.TypeNumeric, id.Type)
	assert.True(t, id.Key)

	name := tbl.Header[1]
	assert.Equal(t, header.TypeString, name.Type)
	assert.Equal(t, "display name", name.Comment)

	price := tbl.Header[2]
	assert.True(t, price.Nullable)
	assert.Equal(t, "0", price.Default)

	image := tbl.Header[3]
	assert.Equal(t, header.TypeBlob, image.Type)
}

func TestCompile_SourceDefaultsToTableName(t *testing.T) {
	c, err := compileString(t, `
table: settings: {
	attr: key_name: {type: "string", key: true}
}
`)
	require.NoError(t, err)

	tbl, ok := c.Table("settings")
	require.True(t, ok)
	assert.Equal(t, "settings", tbl.Qualified)
}

func TestCompile_MultipleTables(t *testing.T) {
	c, err := compileString(t, `
table: products: {
	attr: id: {type: "numeric", key: true}
}
table: orders: {
	attr: order_id: {type: "numeric", key: true}
}
`)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"products", "orders"}, c.Names())
}

func TestCompile_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{
			name:    "no table struct",
			src:     `other: 1`,
			wantMsg: "no tables found",
		},
		{
			name: "no attributes",
			src: `
table: empty: {source: "x"}
`,
			wantMsg: "at least one attribute is required",
		},
		{
			name: "no key attribute",
			src: `
table: keyless: {
	attr: name: {type: "string"}
}
`,
			wantMsg: "at least one key attribute is required",
		},
		{
			name: "missing type",
			src: `
table: t: {
	attr: id: {key: true}
}
`,
			wantMsg: "attribute type is required",
		},
		{
			name: "unsupported type",
			src: `
table: t: {
	attr: id: {type: "decimal", key: true}
}
`,
			wantMsg: "unsupported attribute type",
		},
		{
			name: "blob key",
			src: `
table: t: {
	attr: body: {type: "blob", key: true}
}
`,
			wantMsg: "blob attributes cannot be key attributes",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compileString(t, tc.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.cue"), []byte(productsCUE), 0o644))

	c, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"products"}, c.Names())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog directory not found")
}

func TestLoad_EmptyDirectory(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CUE files found")
}

package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSchemaCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"testdata/catalog"})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "products (products)")
	assert.Contains(t, out, "orders (orders)")
	assert.Contains(t, out, "price")
	assert.Contains(t, out, "numeric")
}

func TestSchema_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewSchemaCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"testdata/catalog"})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string        `json:"status"`
		Data   []SchemaTable `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)

	products := resp.Data[0]
	assert.Equal(t, "products", products.Name)
	assert.Equal(t, "product master data", products.Comment)
	require.Len(t, products.Attributes, 3)
	assert.Equal(t, "id", products.Attributes[0].Name)
	assert.True(t, products.Attributes[0].Key)
}

func TestSchema_MissingDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewSchemaCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/catalog/path"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

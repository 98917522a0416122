package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTail(t *testing.T) {
	testCases := []struct {
		name       string
		args       []any
		wantRest   int
		wantSuffix string
	}{
		{name: "empty", args: nil, wantRest: 0, wantSuffix: ""},
		{name: "int limit", args: []any{"name", 5}, wantRest: 1, wantSuffix: "LIMIT 5"},
		{name: "int64 limit", args: []any{int64(7)}, wantRest: 0, wantSuffix: "LIMIT 7"},
		{name: "order by", args: []any{"name", "ORDER BY `id` DESC"}, wantRest: 1, wantSuffix: "ORDER BY `id` DESC"},
		{name: "limit text", args: []any{"LIMIT 3"}, wantRest: 0, wantSuffix: "LIMIT 3"},
		{name: "case insensitive", args: []any{"order by `id`"}, wantRest: 0, wantSuffix: "order by `id`"},
		{name: "plain spec is not a tail", args: []any{"name"}, wantRest: 1, wantSuffix: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rest, suffix := splitTail(tc.args)
			assert.Len(t, rest, tc.wantRest)
			assert.Equal(t, tc.wantSuffix, suffix)
		})
	}
}

func TestSplitSpecsOutputs(t *testing.T) {
	var a, b int64
	specs, outs, err := splitSpecsOutputs([]any{"x", "y", &a, &b})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, specs)
	assert.Len(t, outs, 2)

	_, _, err = splitSpecsOutputs([]any{"x", &a, "y"})
	require.Error(t, err)
}

func TestSpecTarget(t *testing.T) {
	assert.Equal(t, "name", specTarget("name"))
	assert.Equal(t, "title", specTarget("name->title"))
	assert.Equal(t, "x", specTarget("json_extract(doc, '$->a')->x"))
}

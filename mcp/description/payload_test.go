package description

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		tool     string
		args     []string
		hasError bool
	}{
		{name: "mcp spelling", input: `{"params":{"name":"echo","arguments":{"message":"hi","n":1}}}`, tool: "echo", args: []string{"message", "n"}},
		{name: "legacy spelling", input: `{"params":{"tool":"echo","args":{"message":"hi"}}}`, tool: "echo", args: []string{"message"}},
		{name: "no arguments", input: `{"params":{"name":"ping"}}`, tool: "ping"},
		{name: "missing params", input: `{"name":"ping"}`, hasError: true},
		{name: "arguments not object", input: `{"params":{"name":"ping","arguments":[1]}}`, hasError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input, err := ParseInput([]byte(tc.input))
			if tc.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.EqualValues(t, tc.tool, input.Name)
			var names []string
			for _, arg := range input.Args {
				names = append(names, arg.Name)
			}
			assert.EqualValues(t, tc.args, names)
		})
	}
}

func TestParseOutput(t *testing.T) {
	output, err := ParseOutput([]byte(`{"result":{"content":[],"structuredContent":{"ok":true}}}`))
	require.NoError(t, err)
	value, ok := output.Values.Get("ok")
	require.True(t, ok)
	assert.True(t, value.Bool())

	_, err = ParseOutput([]byte(`{"result":{"content":[]}}`))
	assert.Error(t, err)
}

func TestRegistryLookup(t *testing.T) {
	server := NewRegistry("Root").Push("Root", []*PropertyTypeDef{{Name: "Id", Type: String()}, {Name: "Shared", Type: Bool()}})
	tool := server.Push("Root::tool", []*PropertyTypeDef{{Name: "Id", Type: Integer()}})

	def, level, ok := tool.Lookup("Id")
	require.True(t, ok)
	assert.EqualValues(t, Integer(), def.Type)
	assert.EqualValues(t, "Root::tool", level.Label())

	def, level, ok = tool.Lookup("Shared")
	require.True(t, ok)
	assert.EqualValues(t, Bool(), def.Type)
	assert.EqualValues(t, "Root", level.Label())

	def, _, ok = server.Lookup("Id")
	require.True(t, ok)
	assert.EqualValues(t, String(), def.Type)

	_, _, ok = tool.Lookup("Missing")
	assert.False(t, ok)
}

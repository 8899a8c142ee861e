package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type input struct {
	Stub    string            `json:"stub"`
	Options map[string]bool   `json:"options"`
	Labels  map[string]string `json:"labels,omitempty"`
}

func TestConvert(t *testing.T) {
	testCases := []struct {
		description string
		in          any
		expected    input
	}{
		{
			description: "map",
			in:          map[string]interface{}{"stub": "a.cedarschema", "options": map[string]interface{}{"keep": true}},
			expected:    input{Stub: "a.cedarschema", Options: map[string]bool{"keep": true}},
		},
		{
			description: "assignable",
			in:          input{Stub: "b.json"},
			expected:    input{Stub: "b.json"},
		},
		{
			description: "pointer",
			in:          &input{Stub: "c.json"},
			expected:    input{Stub: "c.json"},
		},
		{
			description: "nil",
			in:          nil,
			expected:    input{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			var actual input
			require.NoError(t, Convert(tc.in, &actual))
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestConvert_Errors(t *testing.T) {
	var actual input
	assert.Error(t, Convert(map[string]interface{}{}, nil))
	assert.Error(t, Convert(map[string]interface{}{}, actual))
	assert.Error(t, Convert(map[string]interface{}{"stub": 1}, &actual))
	assert.Error(t, Convert(func() {}, &actual))
}

func TestPointer(t *testing.T) {
	assert.Equal(t, "x", Dereference(Pointer("x")))
	assert.Equal(t, "", Dereference[string](nil))
	assert.Equal(t, 0, Dereference[int](nil))
}

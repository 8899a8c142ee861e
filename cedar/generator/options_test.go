package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	testCases := []struct {
		name     string
		options  []Option
		expected Config
	}{
		{name: "default", expected: DefaultConfig()},
		{name: "include outputs", options: []Option{WithIncludeOutputs(true)}, expected: Config{IncludeOutputs: true, EraseAnnotations: true}},
		{name: "objects as records", options: []Option{WithObjectsAsRecords(true)}, expected: Config{ObjectsAsRecords: true, EraseAnnotations: true}},
		{name: "keep annotations", options: []Option{WithEraseAnnotations(false)}, expected: Config{}},
		{name: "flatten namespaces", options: []Option{WithFlattenNamespaces(true)}, expected: Config{FlattenNamespaces: true, EraseAnnotations: true}},
		{name: "numbers as decimal", options: []Option{WithNumbersAsDecimal(true)}, expected: Config{NumbersAsDecimal: true, EraseAnnotations: true}},
		{
			name:     "later option wins",
			options:  []Option{WithConfig(Config{IncludeOutputs: true}), WithIncludeOutputs(false), WithNumbersAsDecimal(true)},
			expected: Config{NumbersAsDecimal: true},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGenerator(t, tc.options...)
			assert.Equal(t, tc.expected, g.config)
		})
	}
}

package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	var testCases = []struct {
		pattern   string
		candidate string
		matched   bool
	}{
		{"*", "create_task", true},
		{"", "create_task", false},
		{"create_task", "create_task", true},
		{"create_", "create_task", true},
		{"create_task", "create_task_v2", true},
		{"check_", "create_task", false},
		{"task", "create_task", false},
	}

	for _, tc := range testCases {
		t.Run(tc.pattern+"/"+tc.candidate, func(t *testing.T) {
			assert.Equal(t, tc.matched, Match(tc.pattern, tc.candidate))
		})
	}
}

func TestMatchAny(t *testing.T) {
	var testCases = []struct {
		description string
		patterns    []string
		candidate   string
		matched     bool
	}{
		{"no patterns", nil, "create_task", true},
		{"one of many", []string{"check_", "create_"}, "create_task", true},
		{"none", []string{"check_", "delete_"}, "create_task", false},
		{"only empty", []string{""}, "create_task", false},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.matched, MatchAny(tc.patterns, tc.candidate))
			assert.Equal(t, tc.matched, Filter(tc.patterns)(tc.candidate))
		})
	}
}

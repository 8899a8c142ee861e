package action

import (
	"context"
	"testing"

	"github.com/cedar-policy/cedar-for-agents-sub000/mcp"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltins(t *testing.T) {
	testCases := []struct {
		description string
		patterns    []string
		expected    int
	}{
		{description: "none", expected: 0},
		{description: "all", patterns: []string{"*"}, expected: 5},
		{description: "prefix", patterns: []string{"system/"}, expected: 3},
		{description: "exact", patterns: []string{"printer", "nop"}, expected: 2},
		{description: "unknown", patterns: []string{"cedar/"}, expected: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Len(t, Builtins(tc.patterns), tc.expected)
		})
	}
}

func TestNewWorkflow(t *testing.T) {
	ctx := context.Background()
	svc, err := mcp.New(mcp.WithConfig(&config.Config{Builtins: []string{"printer"}}))
	require.NoError(t, err)

	workflow := NewWorkflow(svc)
	runtime := workflow.Runtime()
	require.NoError(t, runtime.Start(ctx))
	defer func() { _ = runtime.Shutdown(ctx) }()

	actions := workflow.Actions()
	schemaActions := actions.Lookup(Name)
	require.NotNil(t, schemaActions)
	assert.Len(t, schemaActions.Methods(), 2)
	assert.NotNil(t, schemaActions.Methods().Lookup("authorize"))
}

func TestTypes(t *testing.T) {
	registered := Types()
	assert.Len(t, registered, 4)
	for _, item := range registered {
		assert.NotNil(t, item)
	}
}

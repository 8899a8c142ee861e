package action

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cedar-policy/cedar-for-agents-sub000/mcp"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testStub = `namespace Test {
  @mcp_principal("User")
  entity user;
  @mcp_resource("McpServer")
  entity resource;
}`

	testTools = `[{
    "name": "create_task",
    "inputSchema": {
        "type": "object",
        "properties": {"title": {"type": "string"}, "priority": {"type": "integer"}},
        "required": ["title", "priority"]
    },
    "outputSchema": {
        "type": "object",
        "properties": {"id": {"type": "integer"}},
        "required": ["id"]
    }
}]`

	testPolicies = `permit (principal, action, resource) when { context.input.priority > 2 };
forbid (principal, action, resource) when { context has output && context.output.id == 13 };`
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	cfg := &config.Config{
		Stub:     write("stub.cedarschema", testStub),
		Tools:    write("tools.json", testTools),
		Policies: write("policies.cedar", testPolicies),
	}
	svc, err := mcp.New(mcp.WithConfig(cfg))
	require.NoError(t, err)
	return New(svc), dir
}

func TestService_Methods(t *testing.T) {
	srv, _ := newTestService(t)
	assert.Equal(t, Name, srv.Name())

	names := make([]string, 0)
	for _, sig := range srv.Methods() {
		names = append(names, sig.Name)
	}
	assert.Equal(t, []string{"generate", "authorize"}, names)

	_, err := srv.Method("delete")
	assert.Error(t, err)
}

func TestService_Generate(t *testing.T) {
	srv, dir := newTestService(t)
	exec, err := srv.Method("generate")
	require.NoError(t, err)

	testCases := []struct {
		description string
		input       interface{}
		contains    string
		expectErr   bool
	}{
		{description: "human", input: map[string]interface{}{}, contains: `action "create_task"`},
		{description: "json", input: &GenerateInput{Format: "json"}, contains: `"actions"`},
		{description: "typed value", input: GenerateInput{Format: "human"}, contains: "create_taskInput"},
		{description: "unknown format", input: map[string]interface{}{"format": "yaml"}, expectErr: true},
		{description: "invalid input", input: map[string]interface{}{"format": 1}, expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			var output GenerateOutput
			err := exec(context.Background(), tc.input, &output)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Test", output.Namespace)
			assert.Equal(t, []string{"create_task"}, output.Actions)
			assert.Contains(t, output.Schema, tc.contains)
		})
	}

	destination := filepath.Join(dir, "out.cedarschema")
	var output GenerateOutput
	require.NoError(t, exec(context.Background(), &GenerateInput{Output: destination}, &output))
	data, err := os.ReadFile(destination)
	require.NoError(t, err)
	assert.Equal(t, output.Schema, string(data))
}

func TestService_Authorize(t *testing.T) {
	srv, _ := newTestService(t)
	exec, err := srv.Method("authorize")
	require.NoError(t, err)

	base := func(priority int) map[string]interface{} {
		return map[string]interface{}{
			"principal": `Test::user::"alice"`,
			"resource":  `Test::resource::"srv"`,
			"tool":      "create_task",
			"arguments": map[string]interface{}{"title": "a", "priority": priority},
		}
	}

	testCases := []struct {
		description string
		input       map[string]interface{}
		decision    string
		expectErr   bool
	}{
		{description: "allowed", input: base(3), decision: "ALLOW"},
		{description: "denied", input: base(1), decision: "DENY"},
		{
			description: "forbidden output",
			input: func() map[string]interface{} {
				ret := base(3)
				ret["options"] = map[string]interface{}{"includeOutputs": true}
				ret["structuredContent"] = map[string]interface{}{"id": 13}
				return ret
			}(),
			decision: "DENY",
		},
		{
			description: "permitted output",
			input: func() map[string]interface{} {
				ret := base(3)
				ret["options"] = map[string]interface{}{"includeOutputs": true}
				ret["structuredContent"] = map[string]interface{}{"id": 7}
				return ret
			}(),
			decision: "ALLOW",
		},
		{
			description: "missing principal",
			input: func() map[string]interface{} {
				ret := base(3)
				delete(ret, "principal")
				return ret
			}(),
			expectErr: true,
		},
		{
			description: "missing tool",
			input: func() map[string]interface{} {
				ret := base(3)
				delete(ret, "tool")
				return ret
			}(),
			expectErr: true,
		},
		{
			description: "invalid arguments",
			input: func() map[string]interface{} {
				ret := base(3)
				ret["arguments"] = map[string]interface{}{"title": 1, "priority": 3}
				return ret
			}(),
			expectErr: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			var output AuthorizeOutput
			err := exec(context.Background(), tc.input, &output)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.decision, output.Decision)
			if tc.decision == "ALLOW" {
				assert.Len(t, output.Reasons, 1)
			}
		})
	}
}

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

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

	testTools = `{"result": {"tools": [
    {
        "name": "create_task",
        "description": "Creates a task",
        "inputSchema": {
            "type": "object",
            "properties": {"title": {"type": "string"}, "priority": {"type": "integer"}},
            "required": ["title", "priority"]
        }
    },
    {
        "name": "check_task_status",
        "inputSchema": {
            "type": "object",
            "properties": {"task_id": {"type": "string"}},
            "required": ["task_id"]
        }
    }
]}}`

	testPolicies = `permit (
    principal,
    action == Test::Action::"create_task",
    resource
) when { context.input.priority > 2 };`

	testRequest = `{"principal": "Test::user::\"alice\"", "resource": "Test::resource::\"srv\"", "context": {}}`
)

func resetSingletons() {
	svcOnce = sync.Once{}
	svcInst, svcErr = nil, nil
	wfOnce = sync.Once{}
	wfInst, wfErr = nil, nil
	cfgPath, logLevel = "", ""
}

func writeFiles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"stub.cedarschema": testStub,
		"tools.json":       testTools,
		"policies.cedar":   testPolicies,
		"request.json":     testRequest,
		"high.json":        `{"params": {"name": "create_task", "arguments": {"title": "a", "priority": 3}}}`,
		"low.json":         `{"params": {"name": "create_task", "arguments": {"title": "a", "priority": 1}}}`,
		"config.yaml":      "logLevel: error\ngenerator:\n  keepAnnotations: true\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestExtractOption(t *testing.T) {
	testCases := []struct {
		description string
		args        []string
		expected    string
	}{
		{description: "short", args: []string{"generate", "-f", "a.yaml"}, expected: "a.yaml"},
		{description: "long", args: []string{"--config", "b.yaml", "generate"}, expected: "b.yaml"},
		{description: "equals", args: []string{"generate", "--config=c.yaml"}, expected: "c.yaml"},
		{description: "missing value", args: []string{"generate", "-f"}, expected: ""},
		{description: "after double dash", args: []string{"generate", "--", "-f", "d.yaml"}, expected: ""},
		{description: "absent", args: []string{"generate"}, expected: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractOption(tc.args, "-f", "--config"))
		})
	}
}

func TestRun(t *testing.T) {
	dir := writeFiles(t)
	path := func(name string) string { return filepath.Join(dir, name) }

	testCases := []struct {
		description string
		args        []string
		contains    []string
		excludes    []string
		expectErr   bool
	}{
		{
			description: "generate human",
			args:        []string{"generate", path("stub.cedarschema"), path("tools.json")},
			contains:    []string{`action "create_task" appliesTo {`, `action "check_task_status" appliesTo {`},
			excludes:    []string{"@mcp_principal"},
		},
		{
			description: "generate with config",
			args:        []string{"-f", path("config.yaml"), "generate", path("stub.cedarschema"), path("tools.json")},
			contains:    []string{`@mcp_principal("User")`},
		},
		{
			description: "generate json",
			args:        []string{"generate", "--output-format", "json", path("stub.cedarschema"), path("tools.json")},
			contains:    []string{`"Test"`, `"create_task"`},
		},
		{
			description: "generate without stub",
			args:        []string{"generate"},
			expectErr:   true,
		},
		{
			description: "generate invalid format",
			args:        []string{"generate", "--output-format", "xml", path("stub.cedarschema"), path("tools.json")},
			expectErr:   true,
		},
		{
			description: "authorize allow",
			args: []string{"authorize", path("stub.cedarschema"), path("tools.json"),
				"--policies", path("policies.cedar"), "--request-json", path("request.json"), "--mcp-tool-input", path("high.json")},
			contains: []string{"ALLOW"},
		},
		{
			description: "authorize deny",
			args: []string{"authorize", path("stub.cedarschema"), path("tools.json"),
				"--policies", path("policies.cedar"), "--principal", `Test::user::"alice"`, "--resource", `Test::resource::"srv"`,
				"--mcp-tool-input", path("low.json")},
			contains: []string{"DENY"},
		},
		{
			description: "authorize without policies",
			args: []string{"authorize", path("stub.cedarschema"), path("tools.json"),
				"--request-json", path("request.json"), "--mcp-tool-input", path("high.json")},
			expectErr: true,
		},
		{
			description: "authorize mixed request sources",
			args: []string{"authorize", path("stub.cedarschema"), path("tools.json"), "--policies", path("policies.cedar"),
				"--request-json", path("request.json"), "--principal", `Test::user::"alice"`, "--mcp-tool-input", path("high.json")},
			expectErr: true,
		},
		{
			description: "request",
			args: []string{"request", path("stub.cedarschema"), path("tools.json"),
				"--request-json", path("request.json"), "--mcp-tool-input", path("high.json")},
			contains: []string{`"principal"`, `"entities"`, "alice", "create_task"},
		},
		{
			description: "list tools",
			args:        []string{"list-tools", path("tools.json")},
			contains:    []string{"create_task\tCreates a task", "check_task_status"},
		},
		{
			description: "list actions",
			args:        []string{"list-actions"},
			contains:    []string{"cedar/schema\n", "  authorize\tcedar_schema-authorize\t", "  generate\tcedar_schema-generate\t"},
		},
		{
			description: "action detail",
			args:        []string{"action", "-n", "cedar_schema-generate"},
			contains:    []string{"cedar/schema/generate (cedar_schema-generate)", "input: *action.GenerateInput", "Stub string\t// stub"},
		},
		{
			description: "action not found",
			args:        []string{"action", "-n", "cedar/schema/delete"},
			expectErr:   true,
		},
		{
			description: "unknown command",
			args:        []string{"serve"},
			expectErr:   true,
		},
		{
			description: "help",
			args:        []string{"--help"},
			contains:    []string{"generate"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			resetSingletons()
			defer resetSingletons()
			var stdout, stderr bytes.Buffer
			err := run(tc.args, &stdout, &stderr)
			if tc.expectErr {
				assert.Error(t, err)
				assert.NotEmpty(t, stderr.String())
				return
			}
			require.NoError(t, err, stderr.String())
			for _, fragment := range tc.contains {
				assert.Contains(t, stdout.String(), fragment)
			}
			for _, fragment := range tc.excludes {
				assert.NotContains(t, stdout.String(), fragment)
			}
		})
	}
}

func TestRun_GenerateOutput(t *testing.T) {
	resetSingletons()
	defer resetSingletons()
	dir := writeFiles(t)
	location := filepath.Join(dir, "out", "schema.cedarschema")

	var stdout, stderr bytes.Buffer
	err := run([]string{"generate", "--include-outputs", "-o", location,
		filepath.Join(dir, "stub.cedarschema"), filepath.Join(dir, "tools.json")}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Contains(t, string(data), `action "create_task"`)
}

func TestSplitActionName(t *testing.T) {
	testCases := []struct {
		description string
		name        string
		service     string
		method      string
		expectErr   bool
	}{
		{description: "slash form", name: "cedar/schema/generate", service: "cedar/schema", method: "generate"},
		{description: "tool form", name: "cedar_schema-authorize", service: "cedar/schema", method: "authorize"},
		{description: "no method", name: "printer", expectErr: true},
		{description: "empty method", name: "printer/", expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			service, method, err := splitActionName(tc.name)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.service, service)
			assert.Equal(t, tc.method, method)
		})
	}
}

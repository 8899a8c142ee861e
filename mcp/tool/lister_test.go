package tool_test

import (
	"context"
	"sort"
	"testing"

	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/description"
	coretool "github.com/cedar-policy/cedar-for-agents-sub000/mcp/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/jsonrpc"
	transport "github.com/viant/jsonrpc/transport"
	mcp "github.com/viant/mcp"
	protocolclient "github.com/viant/mcp-protocol/client"
	mcpLogger "github.com/viant/mcp-protocol/logger"
	mcpschema "github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
	mcpclient "github.com/viant/mcp/client"
)

// statusHandler answers every call with a fixed status.
func statusHandler(_ context.Context, _ *mcpschema.CallToolRequest) (*mcpschema.CallToolResult, *jsonrpc.Error) {
	return &mcpschema.CallToolResult{Content: []mcpschema.CallToolResultContentElem{{
		Type: "text",
		Text: "done",
	}}}, nil
}

// newTestServer spins up an in-process MCP server exposing the task tools and
// returns a client connected to it.
func newTestServer(t *testing.T) mcpclient.Interface {
	t.Helper()

	newImpl := func(ctx context.Context, notifier transport.Notifier, logger mcpLogger.Logger, client protocolclient.Operations) (protoserver.Handler, error) {
		impl := protoserver.NewDefaultHandler(notifier, logger, client)

		createInput := mcpschema.ToolInputSchema{
			Type: "object",
			Properties: map[string]map[string]interface{}{
				"title":    {"type": "string"},
				"priority": {"type": "integer"},
			},
			Required: []string{"title"},
		}
		createOutput := &mcpschema.ToolOutputSchema{
			Type: "object",
			Properties: map[string]map[string]interface{}{
				"id": {"type": "integer"},
			},
			Required: []string{"id"},
		}
		impl.RegisterToolWithSchema("create_task", "creates a task", createInput, createOutput, statusHandler)

		statusInput := mcpschema.ToolInputSchema{
			Type: "object",
			Properties: map[string]map[string]interface{}{
				"task_id": {"type": "string"},
			},
			Required: []string{"task_id"},
		}
		impl.RegisterToolWithSchema("check_task_status", "checks a task", statusInput, nil, statusHandler)
		return impl, nil
	}

	srv, err := mcp.NewServer(newImpl, nil)
	require.NoError(t, err)
	ctx := context.Background()
	cli := srv.AsClient(ctx)
	_, err = cli.Initialize(ctx)
	require.NoError(t, err)
	return cli
}

func TestList(t *testing.T) {
	ctx := context.Background()
	cli := newTestServer(t)

	tools, err := coretool.List(ctx, cli)
	require.NoError(t, err)

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"check_task_status", "create_task"}, names)
}

func TestDescribe(t *testing.T) {
	ctx := context.Background()
	cli := newTestServer(t)

	server, err := coretool.Describe(ctx, cli, nil)
	require.NoError(t, err)
	require.Len(t, server.Tools(), 2)

	status, ok := server.Tool("check_task_status")
	require.True(t, ok)
	taskID, ok := status.Inputs.Property("task_id")
	require.True(t, ok)
	assert.True(t, taskID.Required)
	assert.Equal(t, description.KindString, taskID.Type.Kind)

	server, err = coretool.Describe(ctx, cli, func(name string) bool { return name == "create_task" })
	require.NoError(t, err)
	require.Len(t, server.Tools(), 1)
	create, ok := server.Tool("create_task")
	require.True(t, ok)
	_, ok = create.Inputs.Property("priority")
	assert.True(t, ok)
}

package conversion

import (
	"testing"

	"github.com/cedar-policy/cedar-for-agents-sub000/internal/conv"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/description"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	schema "github.com/viant/mcp-protocol/schema"
)

func createTaskTool() schema.Tool {
	return schema.Tool{
		Name:        "create_task",
		Description: conv.Pointer("creates a task"),
		InputSchema: schema.ToolInputSchema{
			Type: "object",
			Properties: map[string]map[string]interface{}{
				"title":  {"type": "string"},
				"labels": {"type": "array", "items": map[string]interface{}{"type": "string"}},
				"due":    {"type": "string", "format": "date-time"},
			},
			Required: []string{"title"},
		},
		OutputSchema: &schema.ToolOutputSchema{
			Type: "object",
			Properties: map[string]map[string]interface{}{
				"id": {"type": "integer"},
			},
			Required: []string{"id"},
		},
	}
}

func TestToolDescription(t *testing.T) {
	tool := createTaskTool()
	actual, err := ToolDescription(&tool)
	require.NoError(t, err)

	assert.Equal(t, "create_task", actual.Name)
	assert.Equal(t, "creates a task", actual.Description)

	testCases := []struct {
		name     string
		required bool
		kind     description.Kind
	}{
		{name: "title", required: true, kind: description.KindString},
		{name: "labels", kind: description.KindArray},
		{name: "due", kind: description.KindDatetime},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prop, ok := actual.Inputs.Property(tc.name)
			require.True(t, ok)
			assert.Equal(t, tc.required, prop.Required)
			assert.Equal(t, tc.kind, prop.Type.Kind)
		})
	}

	id, ok := actual.Outputs.Property("id")
	require.True(t, ok)
	assert.True(t, id.Required)
	assert.Equal(t, description.KindInteger, id.Type.Kind)
}

func TestToolDescription_NoSchema(t *testing.T) {
	tool := schema.Tool{Name: "ping"}
	actual, err := ToolDescription(&tool)
	require.NoError(t, err)
	assert.Equal(t, "", actual.Description)
	assert.True(t, actual.Inputs.IsEmpty())
	assert.True(t, actual.Outputs.IsEmpty())
}

func TestToolDescription_InvalidSchema(t *testing.T) {
	tool := schema.Tool{
		Name: "broken",
		InputSchema: schema.ToolInputSchema{
			Type:       "object",
			Properties: map[string]map[string]interface{}{"x": {"type": 42}},
		},
	}
	_, err := ToolDescription(&tool)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `tool "broken"`)
	var descErr *description.Error
	assert.ErrorAs(t, err, &descErr)
}

func TestServerDescription(t *testing.T) {
	tools := []schema.Tool{createTaskTool(), {Name: "check_task_status"}, {Name: "delete_task"}}

	server, err := ServerDescription(tools, nil)
	require.NoError(t, err)
	assert.Len(t, server.Tools(), 3)

	server, err = ServerDescription(tools, func(name string) bool { return name != "delete_task" })
	require.NoError(t, err)
	names := make([]string, 0)
	for _, tool := range server.Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"create_task", "check_task_status"}, names)

	_, err = ServerDescription([]schema.Tool{{Name: "a"}, {Name: "a"}}, nil)
	assert.Error(t, err)
}

func TestToolsJSON(t *testing.T) {
	data, err := ToolsJSON([]schema.Tool{createTaskTool(), {Name: "ping"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), gjson.GetBytes(data, "result.tools.#").Int())
	assert.Equal(t, "object", gjson.GetBytes(data, "result.tools.1.inputSchema.type").String())

	server, err := description.ParseServerDescription(data)
	require.NoError(t, err)
	_, ok := server.Tool("create_task")
	assert.True(t, ok)
}

package conversion

import (
	"encoding/json"
	"fmt"

	"github.com/cedar-policy/cedar-for-agents-sub000/internal/conv"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/description"
	schema "github.com/viant/mcp-protocol/schema"
)

// document is the tools/list shape of a single tool.
type document struct {
	Name         string                   `json:"name"`
	Description  string                   `json:"description,omitempty"`
	InputSchema  schema.ToolInputSchema   `json:"inputSchema"`
	OutputSchema *schema.ToolOutputSchema `json:"outputSchema,omitempty"`
}

// ToolDescription converts an MCP protocol tool into its description.
func ToolDescription(tool *schema.Tool) (*description.ToolDescription, error) {
	data, err := ToJSON(tool)
	if err != nil {
		return nil, err
	}
	ret, err := description.ParseToolDescription(data)
	if err != nil {
		return nil, fmt.Errorf("tool %q: %w", tool.Name, err)
	}
	return ret, nil
}

// ServerDescription converts tools, in order, into a server description
// without server level $defs. Tools rejected by keep are skipped; a nil keep
// keeps everything.
func ServerDescription(tools []schema.Tool, keep func(name string) bool) (*description.ServerDescription, error) {
	ret, err := description.NewServerDescription(nil, nil)
	if err != nil {
		return nil, err
	}
	for i := range tools {
		if keep != nil && !keep(tools[i].Name) {
			continue
		}
		tool, err := ToolDescription(&tools[i])
		if err != nil {
			return nil, err
		}
		if err := ret.Add(tool); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// ToJSON renders tool the way tools/list returns it.
func ToJSON(tool *schema.Tool) ([]byte, error) {
	doc := document{
		Name:         tool.Name,
		Description:  conv.Dereference(tool.Description),
		InputSchema:  tool.InputSchema,
		OutputSchema: tool.OutputSchema,
	}
	if doc.InputSchema.Type == "" {
		doc.InputSchema.Type = "object"
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool %q: %w", tool.Name, err)
	}
	return data, nil
}

// ToolsJSON renders tools as a tools/list result envelope.
func ToolsJSON(tools []schema.Tool) ([]byte, error) {
	docs := make([]json.RawMessage, 0, len(tools))
	for i := range tools {
		data, err := ToJSON(&tools[i])
		if err != nil {
			return nil, err
		}
		docs = append(docs, data)
	}
	return json.Marshal(map[string]interface{}{"result": map[string]interface{}{"tools": docs}})
}

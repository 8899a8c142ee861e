package tool

import (
	"context"
	"fmt"

	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/description"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/tool/conversion"
	mcpschema "github.com/viant/mcp-protocol/schema"
	mcpclient "github.com/viant/mcp/client"
)

// List fetches every tool the server exposes, following pagination cursors.
func List(ctx context.Context, cli mcpclient.Interface) ([]mcpschema.Tool, error) {
	tools := make([]mcpschema.Tool, 0)
	var cursor *string
	for {
		res, err := cli.ListTools(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}
		tools = append(tools, res.Tools...)
		if res.NextCursor == nil || *res.NextCursor == "" {
			break
		}
		cursor = res.NextCursor
	}
	return tools, nil
}

// Describe lists the server tools and converts those accepted by keep into
// a server description. A nil keep accepts every tool.
func Describe(ctx context.Context, cli mcpclient.Interface, keep func(name string) bool) (*description.ServerDescription, error) {
	tools, err := List(ctx, cli)
	if err != nil {
		return nil, err
	}
	return conversion.ServerDescription(tools, keep)
}

package action

import "github.com/cedar-policy/cedar-for-agents-sub000/mcp/config"

// GenerateInput locates the schema stub and tool descriptions. Empty
// locations fall back to the service configuration.
type GenerateInput struct {
	Stub  string `json:"stub,omitempty" description:"schema stub location (.cedarschema or .json)"`
	Tools string `json:"tools,omitempty" description:"tool descriptions location, remote MCP servers when empty"`
	// Format is "human" (default) or "json".
	Format  string            `json:"format,omitempty" description:"output format: human or json"`
	Options *config.Generator `json:"options,omitempty"`
	// Output, when set, is where the schema is written as well.
	Output string `json:"output,omitempty" description:"schema destination"`
}

type GenerateOutput struct {
	Namespace string   `json:"namespace"`
	Actions   []string `json:"actions"`
	Schema    string   `json:"schema"`
}

// AuthorizeInput is a tool call together with the request it is made under.
type AuthorizeInput struct {
	Stub     string            `json:"stub,omitempty"`
	Tools    string            `json:"tools,omitempty"`
	Policies string            `json:"policies,omitempty" description:"policy set location"`
	Entities string            `json:"entities,omitempty" description:"entities location"`
	Options  *config.Generator `json:"options,omitempty"`

	Principal string                 `json:"principal" description:"principal entity uid, e.g. User::\"alice\""`
	Resource  string                 `json:"resource" description:"resource entity uid"`
	Context   map[string]interface{} `json:"context,omitempty" description:"context attributes in Cedar JSON"`

	Tool              string                 `json:"tool" description:"called tool name"`
	Arguments         map[string]interface{} `json:"arguments,omitempty" description:"tool call arguments"`
	StructuredContent map[string]interface{} `json:"structuredContent,omitempty" description:"tool call result"`
}

type AuthorizeOutput struct {
	Decision string   `json:"decision"`
	Reasons  []string `json:"reasons,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

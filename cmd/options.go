package cmd

import (
	"github.com/cedar-policy/cedar-for-agents-sub000/cedar/generator"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/config"
)

// Options is the root for the CLI. Struct tags are interpreted by
// github.com/jessevdk/go-flags.
type Options struct {
	Config      string `short:"f" long:"config" description:"configuration YAML/JSON path"`
	LogLevel    string `long:"log-level" description:"log level (trace, debug, info, warn, error)"`
	ErrorFormat string `long:"error-format" choice:"human" choice:"plain" choice:"json" default:"human" description:"format of logs and error reports"`

	Generate    *GenerateCmd    `command:"generate"     description:"Generate a Cedar schema with an action per MCP tool"`
	Authorize   *AuthorizeCmd   `command:"authorize"    description:"Authorize an MCP tool call against Cedar policies"`
	Request     *RequestCmd     `command:"request"      description:"Print the Cedar request and entities of an MCP tool call"`
	ListTools   *ListToolsCmd   `command:"list-tools"   description:"List tool descriptions from a file or the configured MCP servers"`
	ListActions *ListActionsCmd `command:"list-actions" description:"List workflow services and their actions"`
	Action      *ActionCmd      `command:"action"       description:"Show detailed info about one workflow action"`
	Run         *RunCmd         `command:"run"          description:"Run a workflow"`
}

// Init instantiates the sub-command referenced by the first positional argument
// so that go-flags can populate its fields.
func (o *Options) Init(firstArg string) {
	switch firstArg {
	case "generate":
		o.Generate = &GenerateCmd{}
	case "authorize":
		o.Authorize = &AuthorizeCmd{}
	case "request":
		o.Request = &RequestCmd{}
	case "list-tools":
		o.ListTools = &ListToolsCmd{}
	case "list-actions":
		o.ListActions = &ListActionsCmd{}
	case "action":
		o.Action = &ActionCmd{}
	case "run":
		o.Run = &RunCmd{}
	}
}

// GeneratorFlags turn on encoding options on top of the configured ones.
type GeneratorFlags struct {
	IncludeOutputs    bool `long:"include-outputs" description:"encode the output schema of each tool as an optional context attribute"`
	ObjectsAsRecords  bool `long:"objects-as-records" description:"encode objects without additionalProperties as records"`
	KeepAnnotations   bool `long:"keep-annotations" description:"keep mcp_principal, mcp_resource, mcp_context and mcp_action annotations"`
	FlattenNamespaces bool `long:"flatten-namespaces" description:"flatten nested namespaces into the stub namespace"`
	NumbersAsDecimal  bool `long:"encode-numbers-as-decimal" description:"encode number and float parameters as decimal (lossy)"`
}

func (f *GeneratorFlags) config(base config.Generator) *generator.Config {
	base.IncludeOutputs = base.IncludeOutputs || f.IncludeOutputs
	base.ObjectsAsRecords = base.ObjectsAsRecords || f.ObjectsAsRecords
	base.KeepAnnotations = base.KeepAnnotations || f.KeepAnnotations
	base.FlattenNamespaces = base.FlattenNamespaces || f.FlattenNamespaces
	base.NumbersAsDecimal = base.NumbersAsDecimal || f.NumbersAsDecimal
	ret := base.Config()
	return &ret
}

// SourceArgs locate the schema stub and tool descriptions. Both fall back to
// the configuration.
type SourceArgs struct {
	Stub  string `positional-arg-name:"schema-stub" description:"Cedar schema stub (.cedarschema or .json)"`
	Tools string `positional-arg-name:"tool-descriptions" description:"MCP tool descriptions (tools/list result)"`
}

package cmd

import (
	"context"
	"encoding/json"

	"github.com/cedar-policy/cedar-for-agents-sub000/mcp"
)

// GenerateCmd adds an action per tool description to a schema stub.
type GenerateCmd struct {
	GeneratorFlags
	Output       string     `short:"o" long:"output" description:"location to save the schema (default: stdout)"`
	OutputFormat string     `long:"output-format" choice:"human" choice:"json" default:"human" description:"schema format"`
	Remote       bool       `long:"mcp" description:"list tools from the configured MCP servers"`
	Args         SourceArgs `positional-args:"yes"`
}

func (c *GenerateCmd) Execute(_ []string) error {
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}
	ctx := context.Background()
	gen, err := svc.Generate(ctx, mcp.Source{
		Stub:      c.Args.Stub,
		Tools:     c.Args.Tools,
		Remote:    c.Remote,
		Generator: c.config(svc.Config().Generator),
	})
	if err != nil {
		return err
	}

	var data []byte
	switch c.OutputFormat {
	case "json":
		if data, err = json.MarshalIndent(gen.Schema(), "", "  "); err != nil {
			return err
		}
		data = append(data, '\n')
	default:
		data = gen.Schema().MarshalCedar()
	}
	if c.Output != "" {
		return svc.Upload(ctx, c.Output, data)
	}
	_, err = stdout.Write(data)
	return err
}

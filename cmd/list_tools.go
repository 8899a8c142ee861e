package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/matcher"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/tool/conversion"
	"github.com/viant/mcp-protocol/schema"
)

// ListToolsCmd prints the tools of a tool descriptions file, or of every
// configured MCP server when no file is given.
type ListToolsCmd struct {
	JSON bool `long:"json" description:"print the remote tools as a tools/list result"`
	Args struct {
		Tools string `positional-arg-name:"tool-descriptions"`
	} `positional-args:"yes"`
}

func (c *ListToolsCmd) Execute(_ []string) error {
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}
	ctx := context.Background()
	location := c.Args.Tools
	if location == "" {
		location = svc.Config().Tools
	}
	if location != "" {
		if c.JSON {
			return fmt.Errorf("--json only applies to remote tools")
		}
		server, err := svc.LoadTools(ctx, location)
		if err != nil {
			return err
		}
		for _, t := range server.Tools() {
			fmt.Fprintf(stdout, "%s\t%s\n", t.Name, t.Description)
		}
		return nil
	}

	byServer, err := svc.RemoteToolList(ctx)
	if err != nil {
		return err
	}
	servers := make([]string, 0, len(byServer))
	for name := range byServer {
		servers = append(servers, name)
	}
	sort.Strings(servers)
	keep := matcher.Filter(svc.Config().Include)

	if c.JSON {
		var all []schema.Tool
		for _, name := range servers {
			for _, t := range byServer[name] {
				if keep(t.Name) {
					all = append(all, t)
				}
			}
		}
		data, err := conversion.ToolsJSON(all)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, string(data))
		return err
	}
	for _, name := range servers {
		fmt.Fprintln(stdout, name)
		tools := byServer[name]
		// Deterministic order for scripting.
		sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
		for _, t := range tools {
			if !keep(t.Name) {
				continue
			}
			desc := ""
			if t.Description != nil {
				desc = *t.Description
			}
			fmt.Fprintf(stdout, "  %s\t%s\n", t.Name, desc)
		}
	}
	return nil
}

package mcp

import (
	"context"
	"fmt"

	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/description"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/matcher"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/tool"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/tool/conversion"
	"github.com/viant/mcp"
	protocolclient "github.com/viant/mcp-protocol/client"
	mcpschema "github.com/viant/mcp-protocol/schema"
	"gopkg.in/yaml.v3"
)

// RemoteTools lists the tools of every configured MCP server and merges them
// into one server description. Tool names must be unique across servers.
func (s *Service) RemoteTools(ctx context.Context) (*description.ServerDescription, error) {
	ret, err := description.NewServerDescription(nil, nil)
	if err != nil {
		return nil, err
	}
	err = s.eachServer(ctx, func(name string, tools []mcpschema.Tool) error {
		server, err := conversion.ServerDescription(tools, matcher.Filter(s.config.Include))
		if err != nil {
			return err
		}
		for _, t := range server.Tools() {
			if err := ret.Add(t); err != nil {
				return fmt.Errorf("server %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// RemoteToolList returns the raw tools of every configured MCP server, keyed
// by server name.
func (s *Service) RemoteToolList(ctx context.Context) (map[string][]mcpschema.Tool, error) {
	ret := map[string][]mcpschema.Tool{}
	err := s.eachServer(ctx, func(name string, tools []mcpschema.Tool) error {
		ret[name] = tools
		return nil
	})
	return ret, err
}

func (s *Service) eachServer(ctx context.Context, fn func(name string, tools []mcpschema.Tool) error) error {
	mcpConfigs, err := s.loadMCPClientConfig(ctx)
	if err != nil {
		return err
	}
	for _, mcpConfig := range mcpConfigs {
		mcpConfig.Init()
		cli, err := mcp.NewClient(s.ClientHandler(), mcpConfig)
		if err != nil {
			return fmt.Errorf("create mcp client %q: %w", mcpConfig.Name, err)
		}
		tools, err := tool.List(ctx, cli)
		if err != nil {
			return fmt.Errorf("load tools for %q: %w", mcpConfig.Name, err)
		}
		s.logger.Info().Str("server", mcpConfig.Name).Int("tools", len(tools)).Msg("listed remote tools")
		if err := fn(mcpConfig.Name, tools); err != nil {
			return err
		}
	}
	return nil
}

// ClientHandler returns the handler used for outgoing MCP connections.
func (s *Service) ClientHandler() protocolclient.Handler {
	impl := s.clientHandler
	if impl == nil {
		impl = newListingClient()
	}
	return impl
}

// loadMCPClientConfig resolves MCP client options either embedded directly in
// the config or referenced via URL.
func (s *Service) loadMCPClientConfig(ctx context.Context) ([]*mcp.ClientOptions, error) {
	if s.config.MCP.IsEmpty() {
		return nil, nil
	}
	if len(s.config.MCP.Items) > 0 {
		return s.config.MCP.Items, nil
	}
	data, err := s.download(ctx, s.config.MCP.URL)
	if err != nil {
		return nil, fmt.Errorf("download mcp servers config: %w", err)
	}
	var out []*mcp.ClientOptions
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse mcp servers config %q: %w", s.config.MCP.URL, err)
	}
	return out, nil
}

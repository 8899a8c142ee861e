package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/cedar-policy/cedar-for-agents-sub000/cedar/generator"
	"github.com/cedar-policy/cedar-for-agents-sub000/cedar/schema"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/description"
	"github.com/cedar-policy/cedar-go"
	"github.com/cedar-policy/cedar-go/types"
)

// ErrMissingStub is returned when neither the caller nor the config names a schema stub.
var ErrMissingStub = errors.New("schema stub location is required")

// Source locates the inputs a schema is compiled from. Empty fields fall back
// to the service configuration.
type Source struct {
	Stub string
	// Tools locates the tool descriptions. When neither Tools nor the config
	// names one, tools are listed from the configured MCP servers.
	Tools string
	// Remote lists tools from the configured MCP servers even when a tool
	// descriptions location is configured.
	Remote    bool
	Generator *generator.Config
}

func (s *Service) resolve(src Source) (Source, error) {
	if src.Stub == "" {
		src.Stub = s.config.Stub
	}
	if src.Stub == "" {
		return src, ErrMissingStub
	}
	if src.Remote {
		src.Tools = ""
	} else if src.Tools == "" {
		src.Tools = s.config.Tools
	}
	if src.Generator == nil {
		cfg := s.config.Generator.Config()
		src.Generator = &cfg
	}
	return src, nil
}

func (s Source) key() string {
	tools := s.Tools
	if tools == "" {
		tools = "mcp:"
	}
	return fmt.Sprintf("%s|%s|%+v", URL(s.Stub), tools, *s.Generator)
}

// Tools loads the tool descriptions at location, or lists the remote ones
// when location is empty.
func (s *Service) Tools(ctx context.Context, location string) (*description.ServerDescription, error) {
	if location == "" {
		if s.config.MCP.IsEmpty() {
			return nil, errors.New("tool descriptions location is required when no MCP servers are configured")
		}
		return s.RemoteTools(ctx)
	}
	return s.LoadTools(ctx, location)
}

// Compile adds an action for every tool of server to a generator created
// from stub.
func (s *Service) Compile(stub *schema.Fragment, server *description.ServerDescription, cfg generator.Config) (*generator.Generator, error) {
	gen, err := generator.New(stub, generator.WithConfig(cfg), generator.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	if err := gen.AddActionsFromServerDescription(server); err != nil {
		return nil, err
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	s.logger.Info().Str("namespace", gen.Namespace()).Int("tools", len(server.Tools())).Msg("generated schema")
	return gen, nil
}

// Generate loads the stub and tools of src and compiles them.
func (s *Service) Generate(ctx context.Context, src Source) (*generator.Generator, error) {
	src, err := s.resolve(src)
	if err != nil {
		return nil, err
	}
	stub, err := s.LoadStub(ctx, src.Stub)
	if err != nil {
		return nil, err
	}
	server, err := s.Tools(ctx, src.Tools)
	if err != nil {
		return nil, err
	}
	return s.Compile(stub, server, *src.Generator)
}

// RequestGenerator returns the cached request generator for src, compiling
// it on first use.
func (s *Service) RequestGenerator(ctx context.Context, src Source) (*generator.RequestGenerator, error) {
	src, err := s.resolve(src)
	if err != nil {
		return nil, err
	}
	key := src.key()
	if ret := s.generators.Get(key); ret != nil {
		s.logger.Debug().Str("key", key).Msg("request generator cache hit")
		return ret, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ret := s.generators.Get(key); ret != nil {
		return ret, nil
	}
	gen, err := s.Generate(ctx, src)
	if err != nil {
		return nil, err
	}
	ret, err := gen.NewRequestGenerator()
	if err != nil {
		return nil, err
	}
	s.generators.Set(key, ret)
	return ret, nil
}

// Reset drops every cached request generator.
func (s *Service) Reset() {
	for _, key := range s.generators.Keys() {
		s.generators.Delete(key)
	}
}

// Call is a tool call to compile into a Cedar request.
type Call struct {
	Source
	Principal types.EntityUID
	Resource  types.EntityUID
	Context   types.RecordMap
	Entities  types.EntityMap
	Input     *description.Input
	Output    *description.Output
}

// Request compiles call into a Cedar request and the entities it refers to.
func (s *Service) Request(ctx context.Context, call *Call) (*cedar.Request, types.EntityMap, error) {
	if call.Input == nil {
		return nil, nil, errors.New("tool input is required")
	}
	requestGenerator, err := s.RequestGenerator(ctx, call.Source)
	if err != nil {
		return nil, nil, err
	}
	return requestGenerator.GenerateRequest(call.Principal, call.Resource, call.Context, call.Entities, call.Input, call.Output)
}

// Authorization is the outcome of evaluating a tool call.
type Authorization struct {
	Decision   cedar.Decision
	Diagnostic cedar.Diagnostic
	Request    *cedar.Request
	Entities   types.EntityMap
}

// Allowed reports whether the call is permitted.
func (a *Authorization) Allowed() bool { return a.Decision == cedar.Allow }

// String renders the decision as ALLOW or DENY.
func (a *Authorization) String() string {
	if a.Allowed() {
		return "ALLOW"
	}
	return "DENY"
}

// Authorize compiles call and evaluates it against policies.
func (s *Service) Authorize(ctx context.Context, call *Call, policies *cedar.PolicySet) (*Authorization, error) {
	request, entities, err := s.Request(ctx, call)
	if err != nil {
		return nil, err
	}
	decision, diagnostic := policies.IsAuthorized(entities, *request)
	ret := &Authorization{Decision: decision, Diagnostic: diagnostic, Request: request, Entities: entities}
	s.logger.Debug().
		Str("tool", call.Input.Name).
		Str("decision", ret.String()).
		Int("reasons", len(diagnostic.Reasons)).
		Int("errors", len(diagnostic.Errors)).
		Msg("authorized tool call")
	return ret, nil
}

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cedar-policy/cedar-for-agents-sub000/cedar/schema"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/description"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/matcher"
	"github.com/cedar-policy/cedar-go"
	"github.com/cedar-policy/cedar-go/types"
)

var (
	// ErrUnrecognizedSchemaExtension is returned for a schema stub that is neither .json nor .cedarschema.
	ErrUnrecognizedSchemaExtension = errors.New("unrecognized schema file extension, expected .json or .cedarschema")
	// ErrMissingPrincipal is returned for a request without a principal.
	ErrMissingPrincipal = errors.New("request principal is missing")
	// ErrMissingResource is returned for a request without a resource.
	ErrMissingResource = errors.New("request resource is missing")
)

// URL turns a scheme-less location into an absolute file URL.
func URL(location string) string {
	if strings.Contains(location, "://") {
		return location
	}
	if abs, err := filepath.Abs(location); err == nil {
		location = abs
	}
	return "file://" + location
}

func (s *Service) download(ctx context.Context, location string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, URL(location))
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", location, err)
	}
	return data, nil
}

// Upload writes data to location, creating parent folders as needed.
func (s *Service) Upload(ctx context.Context, location string, data []byte) error {
	if err := s.fs.Upload(ctx, URL(location), 0o644, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %q: %w", location, err)
	}
	return nil
}

// LoadStub reads a schema stub, choosing the format by file extension.
func (s *Service) LoadStub(ctx context.Context, location string) (*schema.Fragment, error) {
	var parse func([]byte) (*schema.Fragment, error)
	switch strings.ToLower(filepath.Ext(location)) {
	case ".cedarschema":
		parse = schema.ParseCedar
	case ".json":
		parse = func(data []byte) (*schema.Fragment, error) {
			ret := schema.NewFragment()
			if err := json.Unmarshal(data, ret); err != nil {
				return nil, err
			}
			return ret, nil
		}
	default:
		return nil, fmt.Errorf("%q: %w", location, ErrUnrecognizedSchemaExtension)
	}
	data, err := s.download(ctx, location)
	if err != nil {
		return nil, err
	}
	stub, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema stub %q: %w", location, err)
	}
	return stub, nil
}

// LoadTools reads tool descriptions and keeps the tools the configured
// include patterns accept.
func (s *Service) LoadTools(ctx context.Context, location string) (*description.ServerDescription, error) {
	data, err := s.download(ctx, location)
	if err != nil {
		return nil, err
	}
	server, err := description.ParseServerDescription(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tool descriptions %q: %w", location, err)
	}
	if len(s.config.Include) > 0 {
		server = server.Filter(matcher.Filter(s.config.Include))
	}
	s.logger.Debug().Str("location", location).Int("tools", len(server.Tools())).Msg("loaded tool descriptions")
	return server, nil
}

// LoadPolicies reads a Cedar policy set.
func (s *Service) LoadPolicies(ctx context.Context, location string) (*cedar.PolicySet, error) {
	data, err := s.download(ctx, location)
	if err != nil {
		return nil, err
	}
	policies, err := cedar.NewPolicySetFromBytes(location, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse policies %q: %w", location, err)
	}
	return policies, nil
}

// LoadEntities reads Cedar entities in their JSON format. An empty location
// yields no entities.
func (s *Service) LoadEntities(ctx context.Context, location string) (types.EntityMap, error) {
	if location == "" {
		return types.EntityMap{}, nil
	}
	data, err := s.download(ctx, location)
	if err != nil {
		return nil, err
	}
	var entities types.EntityMap
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("failed to parse entities %q: %w", location, err)
	}
	return entities, nil
}

// LoadContext reads a JSON object of context attributes. An empty location
// yields an empty context.
func (s *Service) LoadContext(ctx context.Context, location string) (types.RecordMap, error) {
	if location == "" {
		return types.RecordMap{}, nil
	}
	data, err := s.download(ctx, location)
	if err != nil {
		return nil, err
	}
	ret, err := DecodeContext(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse context %q: %w", location, err)
	}
	return ret, nil
}

// LoadInput reads a tools/call request payload.
func (s *Service) LoadInput(ctx context.Context, location string) (*description.Input, error) {
	data, err := s.download(ctx, location)
	if err != nil {
		return nil, err
	}
	input, err := description.ParseInput(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tool input %q: %w", location, err)
	}
	return input, nil
}

// LoadOutput reads a tools/call response payload. An empty location yields nil.
func (s *Service) LoadOutput(ctx context.Context, location string) (*description.Output, error) {
	if location == "" {
		return nil, nil
	}
	data, err := s.download(ctx, location)
	if err != nil {
		return nil, err
	}
	output, err := description.ParseOutput(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tool output %q: %w", location, err)
	}
	return output, nil
}

// Principal, resource and context of a request, as read from a request file.
type requestDocument struct {
	Principal string          `json:"principal"`
	Resource  string          `json:"resource"`
	Context   json.RawMessage `json:"context"`
}

// LoadRequest reads {"principal": "Type::\"id\"", "resource": ..., "context": {...}}.
func (s *Service) LoadRequest(ctx context.Context, location string) (principal, resource types.EntityUID, attributes types.RecordMap, err error) {
	data, err := s.download(ctx, location)
	if err != nil {
		return principal, resource, nil, err
	}
	var doc requestDocument
	if err = json.Unmarshal(data, &doc); err != nil {
		return principal, resource, nil, fmt.Errorf("failed to parse request %q: %w", location, err)
	}
	if principal, resource, err = ParseRequestUIDs(doc.Principal, doc.Resource); err != nil {
		return principal, resource, nil, err
	}
	if attributes, err = DecodeContext(doc.Context); err != nil {
		return principal, resource, nil, fmt.Errorf("failed to parse request %q context: %w", location, err)
	}
	return principal, resource, attributes, nil
}

// ParseRequestUIDs parses principal and resource entity uid literals.
func ParseRequestUIDs(principal, resource string) (types.EntityUID, types.EntityUID, error) {
	var p, r types.EntityUID
	if principal == "" {
		return p, r, ErrMissingPrincipal
	}
	if resource == "" {
		return p, r, ErrMissingResource
	}
	p, err := schema.ParseEntityUID(principal)
	if err != nil {
		return p, r, fmt.Errorf("malformed principal: %w", err)
	}
	if r, err = schema.ParseEntityUID(resource); err != nil {
		return p, r, fmt.Errorf("malformed resource: %w", err)
	}
	return p, r, nil
}

// DecodeContext decodes a JSON object of Cedar values. Empty input and null
// decode to an empty context.
func DecodeContext(data []byte) (types.RecordMap, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return types.RecordMap{}, nil
	}
	var record types.Record
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return nil, err
	}
	return record.Map(), nil
}

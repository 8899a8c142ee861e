package action

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/cedar-policy/cedar-for-agents-sub000/cedar/generator"
	"github.com/cedar-policy/cedar-for-agents-sub000/internal/conv"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/config"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/description"
	cedartypes "github.com/cedar-policy/cedar-go/types"
	"github.com/viant/fluxor/model/types"
)

// Name is the service name workflows address the actions by.
const Name = "cedar/schema"

// Service exposes generate and authorize as Fluxor actions backed by a schema
// service.
type Service struct {
	svc       *mcp.Service
	sigs      types.Signatures
	executors map[string]types.Executable
}

// New builds the action service.
func New(svc *mcp.Service) *Service {
	s := &Service{svc: svc, executors: map[string]types.Executable{}}

	type op struct {
		name string
		in   reflect.Type
		out  reflect.Type
		call func(ctx context.Context, in, out interface{}) error
		desc string
	}
	ops := []op{
		{
			name: "generate",
			in:   reflect.TypeOf(&GenerateInput{}),
			out:  reflect.TypeOf(&GenerateOutput{}),
			call: func(ctx context.Context, in, out interface{}) error {
				return s.generate(ctx, in.(*GenerateInput), out.(*GenerateOutput))
			},
			desc: "Compile MCP tool descriptions into a Cedar schema",
		},
		{
			name: "authorize",
			in:   reflect.TypeOf(&AuthorizeInput{}),
			out:  reflect.TypeOf(&AuthorizeOutput{}),
			call: func(ctx context.Context, in, out interface{}) error {
				return s.authorize(ctx, in.(*AuthorizeInput), out.(*AuthorizeOutput))
			},
			desc: "Authorize an MCP tool call against Cedar policies",
		},
	}

	for _, o := range ops {
		opCopy := o
		s.executors[opCopy.name] = func(ctx context.Context, input, output interface{}) error {
			param := reflect.New(opCopy.in.Elem()).Interface()
			if err := conv.Convert(input, param); err != nil {
				return fmt.Errorf("%s: invalid input: %w", opCopy.name, err)
			}
			result := reflect.New(opCopy.out.Elem()).Interface()
			if err := opCopy.call(ctx, param, result); err != nil {
				return err
			}
			if output == nil {
				return nil
			}
			switch outPtr := output.(type) {
			case *interface{}:
				*outPtr = result
				return nil
			default:
				return conv.Convert(result, outPtr)
			}
		}
		s.sigs = append(s.sigs, types.Signature{
			Name:        opCopy.name,
			Description: opCopy.desc,
			Input:       opCopy.in,
			Output:      opCopy.out,
		})
	}
	return s
}

func (s *Service) Name() string { return Name }

func (s *Service) Methods() types.Signatures { return s.sigs }

func (s *Service) Method(name string) (types.Executable, error) {
	if exec, ok := s.executors[name]; ok {
		return exec, nil
	}
	return nil, types.NewMethodNotFoundError(name)
}

func generatorConfig(options *config.Generator) *generator.Config {
	if options == nil {
		return nil
	}
	ret := options.Config()
	return &ret
}

func (s *Service) generate(ctx context.Context, input *GenerateInput, output *GenerateOutput) error {
	gen, err := s.svc.Generate(ctx, mcp.Source{Stub: input.Stub, Tools: input.Tools, Generator: generatorConfig(input.Options)})
	if err != nil {
		return err
	}
	fragment := gen.Schema()
	var data []byte
	switch input.Format {
	case "", "human":
		data = fragment.MarshalCedar()
	case "json":
		if data, err = json.MarshalIndent(fragment, "", "  "); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q", input.Format)
	}
	if input.Output != "" {
		if err := s.svc.Upload(ctx, input.Output, data); err != nil {
			return err
		}
	}
	output.Namespace = gen.Namespace()
	output.Schema = string(data)
	output.Actions = make([]string, 0)
	if ns := fragment.Namespace(gen.Namespace()); ns != nil {
		for name := range ns.Actions {
			output.Actions = append(output.Actions, name)
		}
	}
	sort.Strings(output.Actions)
	return nil
}

func (s *Service) authorize(ctx context.Context, input *AuthorizeInput, output *AuthorizeOutput) error {
	call := &mcp.Call{Source: mcp.Source{Stub: input.Stub, Tools: input.Tools, Generator: generatorConfig(input.Options)}}
	var err error
	if call.Principal, call.Resource, err = mcp.ParseRequestUIDs(input.Principal, input.Resource); err != nil {
		return err
	}
	if call.Context, err = decodeContext(input.Context); err != nil {
		return err
	}
	if call.Input, err = toolInput(input.Tool, input.Arguments); err != nil {
		return err
	}
	if input.StructuredContent != nil {
		data, err := json.Marshal(input.StructuredContent)
		if err != nil {
			return err
		}
		if call.Output, err = description.NewOutput(data); err != nil {
			return err
		}
	}

	policiesLocation := input.Policies
	if policiesLocation == "" {
		policiesLocation = s.svc.Config().Policies
	}
	if policiesLocation == "" {
		return fmt.Errorf("policies location is required")
	}
	policies, err := s.svc.LoadPolicies(ctx, policiesLocation)
	if err != nil {
		return err
	}
	entitiesLocation := input.Entities
	if entitiesLocation == "" {
		entitiesLocation = s.svc.Config().Entities
	}
	if call.Entities, err = s.svc.LoadEntities(ctx, entitiesLocation); err != nil {
		return err
	}

	authorization, err := s.svc.Authorize(ctx, call, policies)
	if err != nil {
		return err
	}
	output.Decision = authorization.String()
	for _, reason := range authorization.Diagnostic.Reasons {
		output.Reasons = append(output.Reasons, fmt.Sprint(reason.PolicyID))
	}
	for _, diagnosticErr := range authorization.Diagnostic.Errors {
		output.Errors = append(output.Errors, fmt.Sprint(diagnosticErr))
	}
	return nil
}

func decodeContext(values map[string]interface{}) (cedartypes.RecordMap, error) {
	if values == nil {
		return cedartypes.RecordMap{}, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	ret, err := mcp.DecodeContext(data)
	if err != nil {
		return nil, fmt.Errorf("invalid context: %w", err)
	}
	return ret, nil
}

func toolInput(name string, args map[string]interface{}) (*description.Input, error) {
	if name == "" {
		return nil, fmt.Errorf("tool name is required")
	}
	if args == nil {
		return description.NewInput(name, nil)
	}
	data, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	return description.NewInput(name, data)
}

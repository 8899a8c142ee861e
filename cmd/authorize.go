package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/cedar-policy/cedar-for-agents-sub000/mcp"
)

// CallFlags locate the parts of an MCP tool call and the request around it.
type CallFlags struct {
	GeneratorFlags
	Remote      bool       `long:"mcp" description:"list tools from the configured MCP servers"`
	Entities    string     `long:"entities" description:"Cedar entities JSON"`
	RequestJSON string     `long:"request-json" description:"JSON file with principal, resource and context"`
	Principal   string     `long:"principal" description:"principal entity uid, e.g. App::User::\"alice\""`
	Resource    string     `long:"resource" description:"resource entity uid"`
	Context     string     `long:"context" description:"JSON file with additional context attributes"`
	Input       string     `long:"mcp-tool-input" description:"tools/call request JSON" required:"yes"`
	Output      string     `long:"mcp-tool-output" description:"tools/call response JSON"`
	Args        SourceArgs `positional-args:"yes"`
}

func (f *CallFlags) call(ctx context.Context, svc *mcp.Service) (*mcp.Call, error) {
	ret := &mcp.Call{Source: mcp.Source{
		Stub:      f.Args.Stub,
		Tools:     f.Args.Tools,
		Remote:    f.Remote,
		Generator: f.config(svc.Config().Generator),
	}}
	var err error
	if f.RequestJSON != "" {
		if f.Principal != "" || f.Resource != "" || f.Context != "" {
			return nil, errors.New("--request-json cannot be combined with --principal, --resource or --context")
		}
		if ret.Principal, ret.Resource, ret.Context, err = svc.LoadRequest(ctx, f.RequestJSON); err != nil {
			return nil, err
		}
	} else {
		if ret.Principal, ret.Resource, err = mcp.ParseRequestUIDs(f.Principal, f.Resource); err != nil {
			return nil, err
		}
		if ret.Context, err = svc.LoadContext(ctx, f.Context); err != nil {
			return nil, err
		}
	}
	entities := f.Entities
	if entities == "" {
		entities = svc.Config().Entities
	}
	if ret.Entities, err = svc.LoadEntities(ctx, entities); err != nil {
		return nil, err
	}
	if ret.Input, err = svc.LoadInput(ctx, f.Input); err != nil {
		return nil, err
	}
	if ret.Output, err = svc.LoadOutput(ctx, f.Output); err != nil {
		return nil, err
	}
	return ret, nil
}

// AuthorizeCmd evaluates a tool call against a policy set and prints ALLOW or DENY.
type AuthorizeCmd struct {
	CallFlags
	Policies string `long:"policies" description:"Cedar policy set"`
	Explain  bool   `long:"explain" description:"print determining policies and evaluation errors"`
}

func (c *AuthorizeCmd) Execute(_ []string) error {
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}
	ctx := context.Background()
	policiesLocation := c.Policies
	if policiesLocation == "" {
		policiesLocation = svc.Config().Policies
	}
	if policiesLocation == "" {
		return errors.New("--policies is required")
	}
	policies, err := svc.LoadPolicies(ctx, policiesLocation)
	if err != nil {
		return err
	}
	call, err := c.call(ctx, svc)
	if err != nil {
		return err
	}
	authorization, err := svc.Authorize(ctx, call, policies)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, authorization.String())
	if c.Explain {
		for _, reason := range authorization.Diagnostic.Reasons {
			fmt.Fprintf(stdout, "  policy\t%v\n", reason.PolicyID)
		}
		for _, diagnosticErr := range authorization.Diagnostic.Errors {
			fmt.Fprintf(stdout, "  error\t%v\n", diagnosticErr)
		}
	}
	return nil
}

// RequestCmd prints the Cedar request and entities a tool call compiles to.
type RequestCmd struct {
	CallFlags
}

func (c *RequestCmd) Execute(_ []string) error {
	svc, err := serviceSingleton()
	if err != nil {
		return err
	}
	ctx := context.Background()
	call, err := c.call(ctx, svc)
	if err != nil {
		return err
	}
	request, entities, err := svc.Request(ctx, call)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{
		"principal": request.Principal,
		"action":    request.Action,
		"resource":  request.Resource,
		"context":   request.Context,
		"entities":  entities,
	})
}

package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/tool"
	"github.com/viant/fluxor"
	"github.com/viant/fluxor/model/types"
)

// actionInfo describes one workflow action method.
type actionInfo struct {
	Service     string `json:"service"`
	Method      string `json:"method"`
	Tool        string `json:"tool"`
	Description string `json:"description,omitempty"`
	InputType   string `json:"inputType,omitempty"`
	OutputType  string `json:"outputType,omitempty"`
	InputDef    string `json:"inputDefinition,omitempty"`
	OutputDef   string `json:"outputDefinition,omitempty"`
}

func newActionInfo(service string, sig *types.Signature, detailed bool) *actionInfo {
	ret := &actionInfo{
		Service:     service,
		Method:      sig.Name,
		Tool:        tool.NewName(service, sig.Name).String(),
		Description: sig.Description,
	}
	if detailed {
		ret.InputType, ret.OutputType = typeString(sig.Input), typeString(sig.Output)
		ret.InputDef, ret.OutputDef = typeDefinition(sig.Input, ""), typeDefinition(sig.Output, "")
	}
	return ret
}

// listActions returns the methods of every registered service ordered by
// service and method name.
func listActions(wf *fluxor.Service) []*actionInfo {
	actions := wf.Actions()
	names := actions.Services()
	sort.Strings(names)
	var ret []*actionInfo
	for _, name := range names {
		service := actions.Lookup(name)
		if service == nil {
			continue
		}
		sigs := service.Methods()
		sort.Slice(sigs, func(i, j int) bool { return sigs[i].Name < sigs[j].Name })
		for i := range sigs {
			ret = append(ret, newActionInfo(name, &sigs[i], false))
		}
	}
	return ret
}

// ListActionsCmd prints every workflow service and its action methods.
type ListActionsCmd struct {
	JSON bool `long:"json" description:"print result as JSON"`
}

func (c *ListActionsCmd) Execute(_ []string) error {
	ctx := context.Background()
	wf, err := workflowSingleton(ctx)
	if err != nil {
		return err
	}
	defer wf.Runtime().Shutdown(ctx)

	infos := listActions(wf)
	if c.JSON {
		return printJSON(infos)
	}
	service := ""
	for _, info := range infos {
		if info.Service != service {
			service = info.Service
			fmt.Fprintln(stdout, service)
		}
		fmt.Fprintf(stdout, "  %s\t%s\t%s\n", info.Method, info.Tool, info.Description)
	}
	return nil
}

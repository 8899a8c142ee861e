package action

import (
	"reflect"
	"sort"

	"github.com/cedar-policy/cedar-for-agents-sub000/mcp"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/matcher"
	"github.com/viant/fluxor"
	"github.com/viant/fluxor/model/types"
	"github.com/viant/x"

	nop "github.com/viant/fluxor/service/action/nop"
	printer "github.com/viant/fluxor/service/action/printer"
	exec "github.com/viant/fluxor/service/action/system/exec"
	secret "github.com/viant/fluxor/service/action/system/secret"
	storage "github.com/viant/fluxor/service/action/system/storage"
)

// builtinFactories lists the Fluxor action services that can be enabled next
// to the schema actions. Keys are the service names patterns match against.
var builtinFactories = map[string]func() types.Service{
	"nop":            func() types.Service { return nop.New() },
	"printer":        func() types.Service { return printer.New() },
	"system/exec":    func() types.Service { return exec.New() },
	"system/storage": func() types.Service { return storage.New() },
	"system/secret":  func() types.Service { return secret.New() },
}

// Builtins instantiates the builtin services whose names match any pattern,
// ordered by name.
func Builtins(patterns []string) []types.Service {
	var names []string
	for name := range builtinFactories {
		for _, pattern := range patterns {
			if matcher.Match(pattern, name) {
				names = append(names, name)
				break
			}
		}
	}
	sort.Strings(names)
	ret := make([]types.Service, 0, len(names))
	for _, name := range names {
		ret = append(ret, builtinFactories[name]())
	}
	return ret
}

// Types returns the action input and output types, so workflow definitions
// can refer to them by name.
func Types() []*x.Type {
	return []*x.Type{
		x.NewType(reflect.TypeOf(GenerateInput{})),
		x.NewType(reflect.TypeOf(GenerateOutput{})),
		x.NewType(reflect.TypeOf(AuthorizeInput{})),
		x.NewType(reflect.TypeOf(AuthorizeOutput{})),
	}
}

// NewWorkflow creates a Fluxor engine exposing the schema actions of svc and
// the builtins its configuration enables.
func NewWorkflow(svc *mcp.Service, opts ...fluxor.Option) *fluxor.Service {
	extensions := append([]types.Service{New(svc)}, Builtins(svc.Config().Builtins)...)
	options := append([]fluxor.Option{
		fluxor.WithExtensionServices(extensions...),
		fluxor.WithExtensionTypes(Types()...),
	}, opts...)
	return fluxor.New(options...)
}

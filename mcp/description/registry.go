package description

// Registry is one level of $defs visibility. Levels chain outward (parameter,
// tool, server); a lookup returns the nearest definition together with the
// level that declared it so that the definition body is interpreted lexically.
type Registry struct {
	parent *Registry
	label  string
	defs   map[string]*PropertyTypeDef
}

// NewRegistry returns an empty root level with the supplied label.
func NewRegistry(label string) *Registry {
	return &Registry{label: label, defs: map[string]*PropertyTypeDef{}}
}

// Push returns a child level holding defs. The label is an opaque qualifier
// (compilers use the Cedar namespace the defs are emitted into).
func (r *Registry) Push(label string, defs []*PropertyTypeDef) *Registry {
	ret := &Registry{parent: r, label: label, defs: make(map[string]*PropertyTypeDef, len(defs))}
	for _, def := range defs {
		ret.defs[def.Name] = def
	}
	return ret
}

// Label returns the qualifier of this level.
func (r *Registry) Label() string { return r.label }

// Lookup finds the nearest definition of name.
func (r *Registry) Lookup(name string) (*PropertyTypeDef, *Registry, bool) {
	for level := r; level != nil; level = level.parent {
		if def, ok := level.defs[name]; ok {
			return def, level, true
		}
	}
	return nil, nil, false
}

// InputRegistry builds the server, tool and input parameter levels for tool.
// The labels are left empty; callers needing qualifiers push their own levels.
func InputRegistry(server *ServerDescription, tool *ToolDescription) *Registry {
	return toolRegistry(server, tool).Push("", paramDefs(tool.Inputs))
}

// OutputRegistry is InputRegistry for the output parameters.
func OutputRegistry(server *ServerDescription, tool *ToolDescription) *Registry {
	return toolRegistry(server, tool).Push("", paramDefs(tool.Outputs))
}

func toolRegistry(server *ServerDescription, tool *ToolDescription) *Registry {
	var serverDefs []*PropertyTypeDef
	if server != nil {
		serverDefs = server.Defs
	}
	return NewRegistry("").Push("", serverDefs).Push("", tool.Defs)
}

func paramDefs(p *Parameters) []*PropertyTypeDef {
	if p == nil {
		return nil
	}
	return p.Defs
}

// aliasCycle reports the first chain of defs that only refer to each other
// without passing through a structural type.
func aliasCycle(defs []*PropertyTypeDef) []string {
	byName := make(map[string]*PropertyTypeDef, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}
	for _, def := range defs {
		var chain []string
		seen := map[string]int{}
		current := def
		for current != nil && current.Type != nil && current.Type.Kind == KindRef {
			if idx, ok := seen[current.Name]; ok {
				return append(chain[idx:], current.Name)
			}
			seen[current.Name] = len(chain)
			chain = append(chain, current.Name)
			current = byName[current.Type.Ref]
		}
	}
	return nil
}

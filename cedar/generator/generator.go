package generator

import (
	"fmt"
	"sort"

	"github.com/cedar-policy/cedar-for-agents-sub000/cedar/schema"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/description"
	"github.com/rs/zerolog"
)

const (
	annotationPrincipal = "mcp_principal"
	annotationResource  = "mcp_resource"
	annotationContext   = "mcp_context"
	annotationAction    = "mcp_action"
)

// Generator compiles tool descriptions into actions of a Cedar schema
// fragment. It is not safe for concurrent use.
type Generator struct {
	config    Config
	logger    zerolog.Logger
	namespace string
	fragment  *schema.Fragment

	principals []string
	resources  []string
	contexts   []contextAttribute
	groups     []schema.ActionRef

	tools []*trackedTool
}

// contextAttribute is a stub type exposed to every action context under key.
type contextAttribute struct {
	key      string
	typeName string
}

// trackedTool is a compiled tool together with the server $defs it was compiled with.
type trackedTool struct {
	tool       *description.ToolDescription
	serverDefs []*description.PropertyTypeDef
}

// New creates a generator from a schema stub declaring exactly one named namespace.
func New(stub *schema.Fragment, opts ...Option) (*Generator, error) {
	ret := &Generator{config: DefaultConfig(), logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(ret)
	}
	if stub == nil || len(stub.Namespaces) == 0 {
		return nil, ErrWrongNumberOfNamespaces
	}
	if _, ok := stub.Namespaces[""]; ok {
		return nil, ErrGlobalNamespaceUsed
	}
	if len(stub.Namespaces) > 1 {
		return nil, ErrWrongNumberOfNamespaces
	}
	ret.namespace = stub.NamespaceNames()[0]
	if err := ret.scan(stub.Namespaces[ret.namespace]); err != nil {
		return nil, err
	}
	ret.fragment = stub.Clone()
	if ret.config.EraseAnnotations {
		eraseAnnotations(ret.fragment.Namespaces[ret.namespace])
	}
	ret.logger.Debug().
		Str("namespace", ret.namespace).
		Strs("principals", ret.principals).
		Strs("resources", ret.resources).
		Int("contexts", len(ret.contexts)).
		Msg("scanned schema stub")
	return ret, nil
}

func (g *Generator) scan(ns *schema.Namespace) error {
	keys := map[string]bool{}
	addContext := func(annotations schema.Annotations, typeName string) error {
		key, ok := annotations[annotationContext]
		if !ok || key == "" {
			return nil
		}
		if keys[key] {
			return &ConflictingNameError{Name: key}
		}
		keys[key] = true
		g.contexts = append(g.contexts, contextAttribute{key: key, typeName: typeName})
		return nil
	}
	for _, name := range sortedNames(ns.EntityTypes) {
		entity := ns.EntityTypes[name]
		if _, ok := entity.Annotations[annotationPrincipal]; ok {
			g.principals = append(g.principals, name)
		}
		if _, ok := entity.Annotations[annotationResource]; ok {
			g.resources = append(g.resources, name)
		}
		if err := addContext(entity.Annotations, name); err != nil {
			return err
		}
	}
	for _, name := range sortedNames(ns.CommonTypes) {
		if err := addContext(ns.CommonTypes[name].Annotations, name); err != nil {
			return err
		}
	}
	for _, name := range sortedNames(ns.Actions) {
		if _, ok := ns.Actions[name].Annotations[annotationAction]; ok {
			g.groups = append(g.groups, schema.ActionRef{ID: name})
		}
	}
	for _, reserved := range []string{"input", "output"} {
		if keys[reserved] {
			return &ConflictingNameError{Name: reserved}
		}
	}
	return nil
}

func eraseAnnotations(ns *schema.Namespace) {
	for _, t := range ns.CommonTypes {
		delete(t.Annotations, annotationContext)
	}
	for _, e := range ns.EntityTypes {
		delete(e.Annotations, annotationContext)
		delete(e.Annotations, annotationPrincipal)
		delete(e.Annotations, annotationResource)
	}
	for _, a := range ns.Actions {
		delete(a.Annotations, annotationAction)
	}
}

// Namespace returns the stub namespace every generated declaration lives under.
func (g *Generator) Namespace() string { return g.namespace }

// Config returns the effective configuration.
func (g *Generator) Config() Config { return g.config }

// Schema returns the generated fragment. The fragment is owned by the
// generator and changes with every added tool.
func (g *Generator) Schema() *schema.Fragment { return g.fragment }

// AddActionFromToolDescription adds an action for tool. On error the
// generator is left unchanged.
func (g *Generator) AddActionFromToolDescription(tool *description.ToolDescription) error {
	return g.transaction(func() error {
		scope := description.NewRegistry("").Push(g.namespace, nil)
		return g.addTool(tool, nil, scope)
	})
}

// AddActionsFromServerDescription adds the server $defs as common types of
// the stub namespace and an action for every tool. On error the generator
// is left unchanged.
func (g *Generator) AddActionsFromServerDescription(server *description.ServerDescription) error {
	return g.transaction(func() error {
		scope, err := g.addDefs(g.namespace, description.NewRegistry(""), server.Defs)
		if err != nil {
			return err
		}
		for _, tool := range server.Tools() {
			if err := g.addTool(tool, server.Defs, scope); err != nil {
				return fmt.Errorf("tool %q: %w", tool.Name, err)
			}
		}
		return nil
	})
}

func (g *Generator) transaction(fn func() error) error {
	fragment := g.fragment.Clone()
	tools := append([]*trackedTool{}, g.tools...)
	if err := fn(); err != nil {
		g.fragment = fragment
		g.tools = tools
		g.logger.Debug().Err(err).Msg("rolled back schema generation")
		return err
	}
	return nil
}

func (g *Generator) addTool(tool *description.ToolDescription, serverDefs []*description.PropertyTypeDef, scope *description.Registry) error {
	if err := checkName(tool.Name); err != nil {
		return err
	}
	root := g.fragment.Namespace(g.namespace)
	if _, ok := root.Actions[tool.Name]; ok {
		return &ConflictingNameError{Name: tool.Name}
	}
	toolNamespace := schema.Join(g.namespace, tool.Name)
	g.fragment.AddNamespace(toolNamespace)
	toolScope, err := g.addDefs(toolNamespace, scope, tool.Defs)
	if err != nil {
		return err
	}

	context := make(map[string]*schema.Attribute, len(g.contexts)+2)
	for _, attr := range g.contexts {
		context[attr.key] = &schema.Attribute{Type: schema.EntityOrCommon(attr.typeName), Required: true}
	}
	inputName, err := g.addParameters(tool.Name, "Input", tool.Inputs, toolScope)
	if err != nil {
		return err
	}
	context["input"] = &schema.Attribute{Type: schema.CommonRef(inputName), Required: true}
	if g.config.IncludeOutputs {
		outputName, err := g.addParameters(tool.Name, "Output", tool.Outputs, toolScope)
		if err != nil {
			return err
		}
		context["output"] = &schema.Attribute{Type: schema.CommonRef(outputName)}
	}

	action := &schema.Action{
		AppliesTo: &schema.AppliesTo{
			PrincipalTypes: append([]string{}, g.principals...),
			ResourceTypes:  append([]string{}, g.resources...),
			Context:        schema.Record(context, false),
		},
	}
	if len(g.groups) > 0 {
		action.MemberOf = append([]schema.ActionRef{}, g.groups...)
	}
	root.Actions[tool.Name] = action
	g.fragment.RemoveNamespaceIfEmpty(toolNamespace)
	g.tools = append(g.tools, &trackedTool{tool: tool, serverDefs: serverDefs})
	g.logger.Debug().Str("tool", tool.Name).Msg("added action")
	return nil
}

// addParameters compiles params in the <tool>::<kind> namespace and registers
// the record as the common type <tool><kind> of the stub namespace.
func (g *Generator) addParameters(toolName, kind string, params *description.Parameters, scope *description.Registry) (string, error) {
	namespace := schema.Join(g.namespace, toolName, kind)
	g.fragment.AddNamespace(namespace)
	var defs []*description.PropertyTypeDef
	var properties []*description.Property
	if params != nil {
		defs = params.Defs
		properties = params.Properties
	}
	paramScope, err := g.addDefs(namespace, scope, defs)
	if err != nil {
		return "", err
	}
	attributes := make(map[string]*schema.Attribute, len(properties))
	for _, property := range properties {
		if err := checkName(property.Name); err != nil {
			return "", err
		}
		t, err := g.compileType(namespace, property.Name, property.Type, paramScope)
		if err != nil {
			return "", err
		}
		attributes[property.Name] = &schema.Attribute{Type: t, Required: property.Required}
	}
	g.fragment.RemoveNamespaceIfEmpty(namespace)
	name := toolName + kind
	if err := g.addCommonType(g.namespace, name, schema.Record(attributes, false), true); err != nil {
		return "", err
	}
	return name, nil
}

// addDefs pushes defs as a new scope labelled with namespace and registers
// each one as a common type there. Every def is visible while compiling any
// of them.
func (g *Generator) addDefs(namespace string, parent *description.Registry, defs []*description.PropertyTypeDef) (*description.Registry, error) {
	scope := parent.Push(namespace, defs)
	for _, def := range defs {
		if err := checkName(def.Name); err != nil {
			return nil, err
		}
		t, err := g.compileType(namespace, def.Name, def.Type, scope)
		if err != nil {
			return nil, err
		}
		if err := g.addCommonType(namespace, def.Name, t, true); err != nil {
			return nil, err
		}
	}
	return scope, nil
}

// Validate checks that every name referenced by the generated schema
// resolves and that no common type is cyclic.
func (g *Generator) Validate() error {
	if err := g.fragment.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaResolution, err)
	}
	return nil
}

// NewRequestGenerator validates the schema and returns a request compiler
// for the tools added so far.
func (g *Generator) NewRequestGenerator() (*RequestGenerator, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	ret := &RequestGenerator{
		config:    g.config,
		logger:    g.logger,
		namespace: g.namespace,
		fragment:  g.fragment.Clone(),
		tools:     make(map[string]*requestTool, len(g.tools)),
	}
	for _, tracked := range g.tools {
		server, err := description.NewServerDescription([]*description.ToolDescription{tracked.tool}, tracked.serverDefs)
		if err != nil {
			return nil, err
		}
		ret.tools[tracked.tool.Name] = &requestTool{server: server, tool: tracked.tool}
	}
	return ret, nil
}

func sortedNames[T any](m map[string]T) []string {
	ret := make([]string, 0, len(m))
	for name := range m {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

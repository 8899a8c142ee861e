package schema

import "sort"

// Annotations maps annotation names to values; a bare annotation has an empty value.
type Annotations map[string]string

func (a Annotations) clone() Annotations {
	if a == nil {
		return nil
	}
	ret := make(Annotations, len(a))
	for k, v := range a {
		ret[k] = v
	}
	return ret
}

// Fragment is a Cedar schema fragment keyed by namespace name. The empty name
// is the global namespace.
type Fragment struct {
	Namespaces map[string]*Namespace
}

// NewFragment returns an empty fragment.
func NewFragment() *Fragment {
	return &Fragment{Namespaces: map[string]*Namespace{}}
}

// Namespace returns the named namespace, or nil.
func (f *Fragment) Namespace(name string) *Namespace {
	return f.Namespaces[name]
}

// AddNamespace returns the named namespace, creating it when missing.
func (f *Fragment) AddNamespace(name string) *Namespace {
	if f.Namespaces == nil {
		f.Namespaces = map[string]*Namespace{}
	}
	ns, ok := f.Namespaces[name]
	if !ok {
		ns = NewNamespace()
		f.Namespaces[name] = ns
	}
	return ns
}

// RemoveNamespaceIfEmpty drops the named namespace when it declares nothing.
func (f *Fragment) RemoveNamespaceIfEmpty(name string) {
	if ns, ok := f.Namespaces[name]; ok && ns.IsEmpty() {
		delete(f.Namespaces, name)
	}
}

// NamespaceNames returns namespace names in sorted order.
func (f *Fragment) NamespaceNames() []string {
	names := make([]string, 0, len(f.Namespaces))
	for name := range f.Namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy.
func (f *Fragment) Clone() *Fragment {
	ret := &Fragment{Namespaces: make(map[string]*Namespace, len(f.Namespaces))}
	for name, ns := range f.Namespaces {
		ret.Namespaces[name] = ns.Clone()
	}
	return ret
}

// Namespace groups common types, entity types and actions.
type Namespace struct {
	CommonTypes map[string]*CommonType
	EntityTypes map[string]*EntityType
	Actions     map[string]*Action
	Annotations Annotations
}

// NewNamespace returns an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{
		CommonTypes: map[string]*CommonType{},
		EntityTypes: map[string]*EntityType{},
		Actions:     map[string]*Action{},
	}
}

// IsEmpty reports whether the namespace declares no types and no actions.
func (n *Namespace) IsEmpty() bool {
	return len(n.CommonTypes) == 0 && len(n.EntityTypes) == 0 && len(n.Actions) == 0
}

// Clone returns a deep copy.
func (n *Namespace) Clone() *Namespace {
	ret := NewNamespace()
	for name, t := range n.CommonTypes {
		ret.CommonTypes[name] = &CommonType{Type: t.Type.Clone(), Annotations: t.Annotations.clone()}
	}
	for name, e := range n.EntityTypes {
		ret.EntityTypes[name] = e.Clone()
	}
	for name, a := range n.Actions {
		ret.Actions[name] = a.Clone()
	}
	ret.Annotations = n.Annotations.clone()
	return ret
}

// CommonType is a named type alias.
type CommonType struct {
	Type        *Type
	Annotations Annotations
}

// EntityType is either a standard entity type or, when Enum is set, an
// enumerated entity type whose only entities are the listed ids.
type EntityType struct {
	MemberOfTypes []string
	// Shape is a record type; nil means an empty record.
	Shape       *Type
	Tags        *Type
	Enum        []string
	Annotations Annotations
}

// IsEnum reports whether the entity type is enumerated.
func (e *EntityType) IsEnum() bool { return e.Enum != nil }

// Clone returns a deep copy.
func (e *EntityType) Clone() *EntityType {
	return &EntityType{
		MemberOfTypes: cloneStrings(e.MemberOfTypes),
		Shape:         e.Shape.Clone(),
		Tags:          e.Tags.Clone(),
		Enum:          cloneStrings(e.Enum),
		Annotations:   e.Annotations.clone(),
	}
}

// ActionRef references an action; an empty Type means the Action type of the
// declaring namespace.
type ActionRef struct {
	ID   string
	Type string
}

// AppliesTo lists the principal and resource types and the context type of an action.
type AppliesTo struct {
	PrincipalTypes []string
	ResourceTypes  []string
	Context        *Type
}

// Action declares an action.
type Action struct {
	MemberOf    []ActionRef
	AppliesTo   *AppliesTo
	Annotations Annotations
}

// Clone returns a deep copy.
func (a *Action) Clone() *Action {
	ret := &Action{Annotations: a.Annotations.clone()}
	if a.MemberOf != nil {
		ret.MemberOf = append([]ActionRef{}, a.MemberOf...)
	}
	if a.AppliesTo != nil {
		ret.AppliesTo = &AppliesTo{
			PrincipalTypes: cloneStrings(a.AppliesTo.PrincipalTypes),
			ResourceTypes:  cloneStrings(a.AppliesTo.ResourceTypes),
			Context:        a.AppliesTo.Context.Clone(),
		}
	}
	return ret
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string{}, values...)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package description

import "fmt"

// Kind identifies the variant held by a PropertyType.
type Kind int

const (
	KindBool Kind = iota + 1
	KindInteger
	KindFloat
	KindNumber
	KindString
	KindDecimal
	KindDatetime
	KindDuration
	KindIPAddr
	KindNull
	KindEnum
	KindArray
	KindTuple
	KindUnion
	KindObject
	KindRef
	KindUnknown
)

var kindNames = map[Kind]string{
	KindBool:     "bool",
	KindInteger:  "integer",
	KindFloat:    "float",
	KindNumber:   "number",
	KindString:   "string",
	KindDecimal:  "decimal",
	KindDatetime: "datetime",
	KindDuration: "duration",
	KindIPAddr:   "ipaddr",
	KindNull:     "null",
	KindEnum:     "enum",
	KindArray:    "array",
	KindTuple:    "tuple",
	KindUnion:    "union",
	KindObject:   "object",
	KindRef:      "ref",
	KindUnknown:  "unknown",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// PropertyType is a closed sum type over the JSON Schema subset understood by
// the compilers. Only the fields relevant to Kind are populated.
type PropertyType struct {
	Kind Kind
	// Variants lists enum choices in declaration order.
	Variants []string
	// Element is the array element type.
	Element *PropertyType
	// Types holds tuple members or union alternatives.
	Types []*PropertyType
	// Properties and AdditionalProperties describe an object.
	Properties           []*Property
	AdditionalProperties *PropertyType
	// Ref names a $defs entry.
	Ref string
}

func Bool() *PropertyType     { return &PropertyType{Kind: KindBool} }
func Integer() *PropertyType  { return &PropertyType{Kind: KindInteger} }
func Float() *PropertyType    { return &PropertyType{Kind: KindFloat} }
func Number() *PropertyType   { return &PropertyType{Kind: KindNumber} }
func String() *PropertyType   { return &PropertyType{Kind: KindString} }
func Decimal() *PropertyType  { return &PropertyType{Kind: KindDecimal} }
func Datetime() *PropertyType { return &PropertyType{Kind: KindDatetime} }
func Duration() *PropertyType { return &PropertyType{Kind: KindDuration} }
func IPAddr() *PropertyType   { return &PropertyType{Kind: KindIPAddr} }
func Null() *PropertyType     { return &PropertyType{Kind: KindNull} }
func Unknown() *PropertyType  { return &PropertyType{Kind: KindUnknown} }

func Enum(variants ...string) *PropertyType {
	return &PropertyType{Kind: KindEnum, Variants: variants}
}

func Array(element *PropertyType) *PropertyType {
	return &PropertyType{Kind: KindArray, Element: element}
}

func Tuple(types ...*PropertyType) *PropertyType {
	return &PropertyType{Kind: KindTuple, Types: types}
}

func Union(types ...*PropertyType) *PropertyType {
	return &PropertyType{Kind: KindUnion, Types: types}
}

// Object builds an object type; additional may be nil for a closed object.
func Object(properties []*Property, additional *PropertyType) *PropertyType {
	return &PropertyType{Kind: KindObject, Properties: properties, AdditionalProperties: additional}
}

func Ref(name string) *PropertyType {
	return &PropertyType{Kind: KindRef, Ref: name}
}

// Property returns the object property with the given name.
func (t *PropertyType) Property(name string) (*Property, bool) {
	for _, p := range t.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Property is a named, optionally required member of an object or parameter list.
type Property struct {
	Name        string
	Required    bool
	Type        *PropertyType
	Description string
}

// PropertyTypeDef is a named $defs entry.
type PropertyTypeDef struct {
	Name        string
	Type        *PropertyType
	Description string
}

// Parameters is the input or output parameter list of a tool.
type Parameters struct {
	Properties []*Property
	Defs       []*PropertyTypeDef
}

// Property returns the parameter with the given name.
func (p *Parameters) Property(name string) (*Property, bool) {
	if p == nil {
		return nil, false
	}
	for _, prop := range p.Properties {
		if prop.Name == name {
			return prop, true
		}
	}
	return nil, false
}

// IsEmpty reports whether the parameter list declares nothing.
func (p *Parameters) IsEmpty() bool {
	return p == nil || (len(p.Properties) == 0 && len(p.Defs) == 0)
}

// ToolDescription describes a single MCP tool.
type ToolDescription struct {
	Name        string
	Description string
	Inputs      *Parameters
	Outputs     *Parameters
	Defs        []*PropertyTypeDef
}

// ServerDescription is an ordered, name-keyed collection of tools sharing
// server level $defs.
type ServerDescription struct {
	tools []*ToolDescription
	index map[string]int
	Defs  []*PropertyTypeDef
}

// NewServerDescription builds a server description, rejecting duplicate tool names.
func NewServerDescription(tools []*ToolDescription, defs []*PropertyTypeDef) (*ServerDescription, error) {
	ret := &ServerDescription{index: make(map[string]int, len(tools)), Defs: defs}
	for _, tool := range tools {
		if err := ret.Add(tool); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// Add appends a tool; tool names are unique per server.
func (s *ServerDescription) Add(tool *ToolDescription) error {
	if s.index == nil {
		s.index = map[string]int{}
	}
	if _, ok := s.index[tool.Name]; ok {
		return fmt.Errorf("duplicate tool %q", tool.Name)
	}
	s.index[tool.Name] = len(s.tools)
	s.tools = append(s.tools, tool)
	return nil
}

// Tools returns tools in declaration order.
func (s *ServerDescription) Tools() []*ToolDescription {
	if s == nil {
		return nil
	}
	return s.tools
}

// Tool looks up a tool by name.
func (s *ServerDescription) Tool(name string) (*ToolDescription, bool) {
	if s == nil {
		return nil, false
	}
	idx, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.tools[idx], true
}

// Filter returns a server description restricted to tools accepted by keep.
func (s *ServerDescription) Filter(keep func(name string) bool) *ServerDescription {
	ret := &ServerDescription{index: map[string]int{}, Defs: s.Defs}
	for _, tool := range s.tools {
		if keep(tool.Name) {
			_ = ret.Add(tool)
		}
	}
	return ret
}

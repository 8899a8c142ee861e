package schema

// TypeKind identifies the variant held by a Type.
type TypeKind int

const (
	TypeBoolean TypeKind = iota + 1
	TypeLong
	TypeString
	TypeExtension
	TypeEntity
	// TypeEntityOrCommon is a name resolved first as a common type, then as an entity type.
	TypeEntityOrCommon
	TypeCommonRef
	TypeSet
	TypeRecord
)

// Extension type names.
const (
	ExtensionDecimal  = "decimal"
	ExtensionDatetime = "datetime"
	ExtensionDuration = "duration"
	ExtensionIPAddr   = "ipaddr"
)

// Type is a Cedar schema type.
type Type struct {
	Kind TypeKind
	// Name is set for extension, entity, entity-or-common and common reference types.
	Name    string
	Element *Type
	// Attributes and AdditionalAttributes describe a record.
	Attributes           map[string]*Attribute
	AdditionalAttributes bool
}

// Attribute is a record attribute.
type Attribute struct {
	Type        *Type
	Required    bool
	Annotations Annotations
}

func Boolean() *Type { return &Type{Kind: TypeBoolean} }

func Long() *Type { return &Type{Kind: TypeLong} }

func String() *Type { return &Type{Kind: TypeString} }

func Extension(name string) *Type { return &Type{Kind: TypeExtension, Name: name} }

func Entity(name string) *Type { return &Type{Kind: TypeEntity, Name: name} }

func EntityOrCommon(name string) *Type { return &Type{Kind: TypeEntityOrCommon, Name: name} }

func CommonRef(name string) *Type { return &Type{Kind: TypeCommonRef, Name: name} }

func Set(element *Type) *Type { return &Type{Kind: TypeSet, Element: element} }

// Record builds a record type; a nil attribute map is treated as empty.
func Record(attributes map[string]*Attribute, additional bool) *Type {
	if attributes == nil {
		attributes = map[string]*Attribute{}
	}
	return &Type{Kind: TypeRecord, Attributes: attributes, AdditionalAttributes: additional}
}

// RefName returns the referenced name for entity, entity-or-common and common reference types.
func (t *Type) RefName() (string, bool) {
	if t == nil {
		return "", false
	}
	switch t.Kind {
	case TypeEntity, TypeEntityOrCommon, TypeCommonRef:
		return t.Name, true
	}
	return "", false
}

// IsEmptyRecord reports whether t is a record without attributes.
func (t *Type) IsEmptyRecord() bool {
	return t == nil || (t.Kind == TypeRecord && len(t.Attributes) == 0 && !t.AdditionalAttributes)
}

// Clone returns a deep copy.
func (t *Type) Clone() *Type {
	if t == nil {
		return nil
	}
	ret := &Type{Kind: t.Kind, Name: t.Name, Element: t.Element.Clone(), AdditionalAttributes: t.AdditionalAttributes}
	if t.Attributes != nil {
		ret.Attributes = make(map[string]*Attribute, len(t.Attributes))
		for name, attr := range t.Attributes {
			ret.Attributes[name] = &Attribute{Type: attr.Type.Clone(), Required: attr.Required, Annotations: attr.Annotations.clone()}
		}
	}
	return ret
}

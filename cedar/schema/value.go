package schema

import (
	"fmt"

	"github.com/cedar-policy/cedar-go/types"
)

// ValueKind identifies the variant held by a Value.
type ValueKind int

const (
	ValueBool ValueKind = iota + 1
	ValueLong
	ValueString
	ValueEntity
	ValueExtension
	ValueSet
	ValueRecord
	// ValueOpaque wraps a caller supplied cedar-go value that is only checked shallowly.
	ValueOpaque
)

// Value is a Cedar value kept in a form that can be type checked against a
// fragment before it is converted into cedar-go values.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Long   int64
	String string
	// EntityType and EntityID identify an entity.
	EntityType string
	EntityID   string
	// Extension names the extension type; String holds its literal.
	Extension  string
	Elements   []*Value
	Attributes map[string]*Value
	Opaque     types.Value
}

func BoolValue(b bool) *Value { return &Value{Kind: ValueBool, Bool: b} }

func LongValue(l int64) *Value { return &Value{Kind: ValueLong, Long: l} }

func StringValue(s string) *Value { return &Value{Kind: ValueString, String: s} }

func EntityValue(entityType, id string) *Value {
	return &Value{Kind: ValueEntity, EntityType: entityType, EntityID: id}
}

func ExtensionValue(extension, literal string) *Value {
	return &Value{Kind: ValueExtension, Extension: extension, String: literal}
}

func SetValue(elements ...*Value) *Value { return &Value{Kind: ValueSet, Elements: elements} }

func RecordValue(attributes map[string]*Value) *Value {
	if attributes == nil {
		attributes = map[string]*Value{}
	}
	return &Value{Kind: ValueRecord, Attributes: attributes}
}

func OpaqueValue(v types.Value) *Value { return &Value{Kind: ValueOpaque, Opaque: v} }

// Equal reports structural equality.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueBool:
		return v.Bool == o.Bool
	case ValueLong:
		return v.Long == o.Long
	case ValueString:
		return v.String == o.String
	case ValueEntity:
		return v.EntityType == o.EntityType && v.EntityID == o.EntityID
	case ValueExtension:
		return v.Extension == o.Extension && v.String == o.String
	case ValueSet:
		if len(v.Elements) != len(o.Elements) {
			return false
		}
		for i := range v.Elements {
			if !v.Elements[i].Equal(o.Elements[i]) {
				return false
			}
		}
		return true
	case ValueRecord:
		if len(v.Attributes) != len(o.Attributes) {
			return false
		}
		for name, attr := range v.Attributes {
			if !attr.Equal(o.Attributes[name]) {
				return false
			}
		}
		return true
	}
	if v.Opaque == nil || o.Opaque == nil {
		return v.Opaque == nil && o.Opaque == nil
	}
	return v.Opaque.Equal(o.Opaque)
}

// Cedar converts the value into a cedar-go value.
func (v *Value) Cedar() (types.Value, error) {
	switch v.Kind {
	case ValueBool:
		return types.Boolean(v.Bool), nil
	case ValueLong:
		return types.Long(v.Long), nil
	case ValueString:
		return types.String(v.String), nil
	case ValueEntity:
		return v.EntityUID(), nil
	case ValueExtension:
		return extensionValue(v.Extension, v.String)
	case ValueSet:
		elements := make([]types.Value, 0, len(v.Elements))
		for _, element := range v.Elements {
			converted, err := element.Cedar()
			if err != nil {
				return nil, err
			}
			elements = append(elements, converted)
		}
		return types.NewSet(elements...), nil
	case ValueRecord:
		return v.Record()
	case ValueOpaque:
		return v.Opaque, nil
	}
	return nil, fmt.Errorf("unsupported value kind %d", v.Kind)
}

// EntityUID returns the uid of an entity value.
func (v *Value) EntityUID() types.EntityUID {
	return types.NewEntityUID(types.EntityType(v.EntityType), types.String(v.EntityID))
}

// Record converts a record value into a cedar-go record.
func (v *Value) Record() (types.Record, error) {
	return RecordOf(v.Attributes)
}

// RecordOf converts named values into a cedar-go record.
func RecordOf(attributes map[string]*Value) (types.Record, error) {
	m := make(types.RecordMap, len(attributes))
	for name, attr := range attributes {
		converted, err := attr.Cedar()
		if err != nil {
			return types.Record{}, fmt.Errorf("attribute %q: %w", name, err)
		}
		m[types.String(name)] = converted
	}
	return types.NewRecord(m), nil
}

func extensionValue(extension, literal string) (types.Value, error) {
	switch extension {
	case ExtensionDecimal:
		return types.ParseDecimal(literal)
	case ExtensionDatetime:
		return types.ParseDatetime(literal)
	case ExtensionDuration:
		return types.ParseDuration(literal)
	case ExtensionIPAddr:
		return types.ParseIPAddr(literal)
	}
	return nil, fmt.Errorf("unsupported extension type %q", extension)
}

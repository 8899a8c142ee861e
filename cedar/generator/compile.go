package generator

import (
	"fmt"
	"strings"

	"github.com/cedar-policy/cedar-for-agents-sub000/cedar/schema"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/description"
)

// Opaque entity types standing in for JSON values Cedar cannot represent.
const (
	floatType   = "Float"
	numberType  = "Number"
	nullType    = "Null"
	unknownType = "Unknown"
)

// Common type basenames Cedar reserves for its own types.
var reservedCommonTypeNames = map[string]bool{
	"Bool":      true,
	"Boolean":   true,
	"Entity":    true,
	"Extension": true,
	"Long":      true,
	"Record":    true,
	"Set":       true,
	"String":    true,
}

// builtinNames are names that must stay qualified to not be read as Cedar types.
var builtinNames = map[string]bool{
	"Bool":                   true,
	"Boolean":                true,
	"Long":                   true,
	"String":                 true,
	schema.ExtensionDecimal:  true,
	schema.ExtensionDatetime: true,
	schema.ExtensionDuration: true,
	schema.ExtensionIPAddr:   true,
}

func checkName(name string) error {
	if schema.IsReserved(name) {
		return &ReservedNameError{Name: name}
	}
	if !schema.IsIdentifier(name) {
		return &InvalidNameError{Name: name}
	}
	return nil
}

func tupleTypeName(i int) string  { return fmt.Sprintf("Proj%d", i) }
func tupleAttribute(i int) string { return fmt.Sprintf("proj%d", i) }
func unionTypeName(i int) string  { return fmt.Sprintf("TypeChoice%d", i) }
func unionAttribute(i int) string { return fmt.Sprintf("typeChoice%d", i) }
func tagTypeName(tyName string) string {
	return tyName + "Tag"
}

// compileType encodes t as a Cedar type. Declarations needed by t are added
// to namespace under tyName, nested ones to the <namespace>::<tyName> namespace.
func (g *Generator) compileType(namespace, tyName string, t *description.PropertyType, scope *description.Registry) (*schema.Type, error) {
	switch t.Kind {
	case description.KindBool:
		return schema.Boolean(), nil
	case description.KindInteger:
		return schema.Long(), nil
	case description.KindString:
		return schema.String(), nil
	case description.KindDecimal:
		return schema.Extension(schema.ExtensionDecimal), nil
	case description.KindDatetime:
		return schema.Extension(schema.ExtensionDatetime), nil
	case description.KindDuration:
		return schema.Extension(schema.ExtensionDuration), nil
	case description.KindIPAddr:
		return schema.Extension(schema.ExtensionIPAddr), nil
	case description.KindFloat:
		if g.config.NumbersAsDecimal {
			return schema.Extension(schema.ExtensionDecimal), nil
		}
		return g.opaqueType(floatType)
	case description.KindNumber:
		if g.config.NumbersAsDecimal {
			return schema.Extension(schema.ExtensionDecimal), nil
		}
		return g.opaqueType(numberType)
	case description.KindNull:
		return g.opaqueType(nullType)
	case description.KindUnknown:
		return g.opaqueType(unknownType)
	case description.KindEnum:
		if len(t.Variants) == 0 {
			return nil, &EmptyEnumError{Name: tyName}
		}
		entity := &schema.EntityType{Enum: append([]string{}, t.Variants...)}
		if err := g.addEntityType(namespace, tyName, entity, true); err != nil {
			return nil, err
		}
		return schema.Entity(flatten(g.config, g.namespace, schema.Join(namespace, tyName))), nil
	case description.KindArray:
		element, err := g.compileType(namespace, tyName, t.Element, scope)
		if err != nil {
			return nil, err
		}
		return schema.Set(element), nil
	case description.KindTuple:
		return g.compileRecord(namespace, tyName, t.Types, tupleTypeName, tupleAttribute, true, scope)
	case description.KindUnion:
		return g.compileRecord(namespace, tyName, t.Types, unionTypeName, unionAttribute, false, scope)
	case description.KindObject:
		return g.compileObject(namespace, tyName, t, scope)
	case description.KindRef:
		_, level, ok := scope.Lookup(t.Ref)
		if !ok {
			return nil, &UndefinedReferenceError{Name: t.Ref, Namespace: namespace}
		}
		return schema.EntityOrCommon(flatten(g.config, g.namespace, schema.Join(level.Label(), t.Ref))), nil
	}
	return nil, fmt.Errorf("unsupported property type %v", t.Kind)
}

// compileRecord encodes tuples and unions as records whose members are
// compiled in the <namespace>::<tyName> namespace. Member names stay fully
// qualified since the record is inlined wherever the caller places it.
func (g *Generator) compileRecord(namespace, tyName string, members []*description.PropertyType, typeName, attribute func(int) string, required bool, scope *description.Registry) (*schema.Type, error) {
	sub := schema.Join(namespace, tyName)
	g.fragment.AddNamespace(sub)
	attributes := make(map[string]*schema.Attribute, len(members))
	for i, member := range members {
		t, err := g.compileType(sub, typeName(i), member, scope)
		if err != nil {
			return nil, err
		}
		attributes[attribute(i)] = &schema.Attribute{Type: t, Required: required}
	}
	g.fragment.RemoveNamespaceIfEmpty(sub)
	return schema.Record(attributes, false), nil
}

// compileObject encodes an object as an entity type, or as a record common
// type when objects are encoded as records and the object is closed.
func (g *Generator) compileObject(namespace, tyName string, t *description.PropertyType, scope *description.Registry) (*schema.Type, error) {
	sub := schema.Join(namespace, tyName)
	g.fragment.AddNamespace(sub)
	var tags *schema.Type
	if t.AdditionalProperties != nil {
		var err error
		if tags, err = g.compileType(sub, tagTypeName(tyName), t.AdditionalProperties, scope); err != nil {
			return nil, err
		}
	}
	attributes := make(map[string]*schema.Attribute, len(t.Properties))
	for _, property := range t.Properties {
		if err := checkName(property.Name); err != nil {
			return nil, err
		}
		compiled, err := g.compileType(sub, property.Name, property.Type, scope)
		if err != nil {
			return nil, err
		}
		attributes[property.Name] = &schema.Attribute{Type: unqualify(namespace, compiled), Required: property.Required}
	}
	name := flatten(g.config, g.namespace, schema.Join(namespace, tyName))
	var ret *schema.Type
	if g.config.ObjectsAsRecords && tags == nil {
		if err := g.addCommonType(namespace, tyName, schema.Record(attributes, false), true); err != nil {
			return nil, err
		}
		ret = schema.EntityOrCommon(name)
	} else {
		entity := &schema.EntityType{Shape: schema.Record(attributes, tags != nil), Tags: tags}
		if err := g.addEntityType(namespace, tyName, entity, true); err != nil {
			return nil, err
		}
		ret = schema.Entity(name)
	}
	g.fragment.RemoveNamespaceIfEmpty(sub)
	return ret, nil
}

// opaqueType declares an attribute-less entity type in the stub namespace.
// Repeated declarations are accepted.
func (g *Generator) opaqueType(name string) (*schema.Type, error) {
	if err := g.addEntityType(g.namespace, name, &schema.EntityType{}, false); err != nil {
		return nil, err
	}
	return schema.Entity(schema.Join(g.namespace, name)), nil
}

func (g *Generator) addCommonType(namespace, name string, t *schema.Type, errorIfExists bool) error {
	namespace, name = g.declaration(namespace, name)
	if ref, ok := t.RefName(); ok && schema.Unqualify(namespace, ref) == name {
		return nil
	}
	if reservedCommonTypeNames[name] {
		return &ReservedNameError{Name: name}
	}
	ns := g.fragment.AddNamespace(namespace)
	_, common := ns.CommonTypes[name]
	_, entity := ns.EntityTypes[name]
	switch {
	case entity || (common && errorIfExists):
		return &ConflictingNameError{Name: name}
	case common:
		return nil
	}
	ns.CommonTypes[name] = &schema.CommonType{Type: t}
	return nil
}

func (g *Generator) addEntityType(namespace, name string, e *schema.EntityType, errorIfExists bool) error {
	namespace, name = g.declaration(namespace, name)
	ns := g.fragment.AddNamespace(namespace)
	_, common := ns.CommonTypes[name]
	_, entity := ns.EntityTypes[name]
	switch {
	case common || (entity && errorIfExists):
		return &ConflictingNameError{Name: name}
	case entity:
		return nil
	}
	ns.EntityTypes[name] = e
	return nil
}

// declaration returns where a declaration of name in namespace is placed,
// which is the stub namespace when namespaces are flattened.
func (g *Generator) declaration(namespace, name string) (string, string) {
	if !g.config.FlattenNamespaces {
		return namespace, name
	}
	_, base := schema.Split(flatten(g.config, g.namespace, schema.Join(namespace, name)))
	return g.namespace, base
}

// flatten rewrites <root>::A::B::C to <root>::A_B_C when namespaces are
// flattened. Names outside root are returned unchanged.
func flatten(cfg Config, root, name string) string {
	if !cfg.FlattenNamespaces {
		return name
	}
	prefix := root + schema.Separator
	if !strings.HasPrefix(name, prefix) {
		return name
	}
	return prefix + strings.ReplaceAll(name[len(prefix):], schema.Separator, "_")
}

// unqualify strips namespace from names declared directly in it.
func unqualify(namespace string, t *schema.Type) *schema.Type {
	switch t.Kind {
	case schema.TypeEntity, schema.TypeEntityOrCommon, schema.TypeCommonRef:
		name := schema.Unqualify(namespace, t.Name)
		if builtinNames[name] {
			name = t.Name
		}
		return &schema.Type{Kind: t.Kind, Name: name}
	case schema.TypeSet:
		return schema.Set(unqualify(namespace, t.Element))
	case schema.TypeRecord:
		attributes := make(map[string]*schema.Attribute, len(t.Attributes))
		for name, attr := range t.Attributes {
			attributes[name] = &schema.Attribute{Type: unqualify(namespace, attr.Type), Required: attr.Required, Annotations: attr.Annotations}
		}
		return schema.Record(attributes, t.AdditionalAttributes)
	}
	return t
}

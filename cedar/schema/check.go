package schema

import (
	"fmt"
	"strings"

	"github.com/cedar-policy/cedar-go/types"
)

// TypeError reports a value that does not conform to its declared type.
type TypeError struct {
	Path    []string
	Message string
}

func (e *TypeError) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	return strings.Join(e.Path, ".") + ": " + e.Message
}

type checker struct {
	fragment *Fragment
	path     []string
}

func (c *checker) fail(format string, args ...interface{}) error {
	return &TypeError{Path: append([]string{}, c.path...), Message: fmt.Sprintf(format, args...)}
}

func (c *checker) descend(name string, fn func() error) error {
	c.path = append(c.path, name)
	err := fn()
	c.path = c.path[:len(c.path)-1]
	return err
}

// CheckValue checks v against t, resolving names from namespace.
func (f *Fragment) CheckValue(namespace string, t *Type, v *Value) error {
	c := &checker{fragment: f}
	return c.check(namespace, t, v)
}

// CheckEntity checks entity attributes and tags against the declaration of
// the fully qualified entity type.
func (f *Fragment) CheckEntity(entityType string, attributes, tags map[string]*Value) error {
	nsName, base := Split(entityType)
	ns := f.Namespaces[nsName]
	if ns == nil || ns.EntityTypes[base] == nil {
		return &TypeError{Message: fmt.Sprintf("undeclared entity type %s", entityType)}
	}
	declared := ns.EntityTypes[base]
	c := &checker{fragment: f, path: []string{entityType}}
	if declared.IsEnum() {
		if len(attributes) > 0 || len(tags) > 0 {
			return c.fail("enumerated entity type cannot carry attributes or tags")
		}
		return nil
	}
	shape := declared.Shape
	if shape == nil {
		shape = Record(nil, false)
	}
	if err := c.check(nsName, shape, RecordValue(attributes)); err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	if declared.Tags == nil {
		return c.fail("entity type does not declare tags")
	}
	for _, name := range sortedKeys(tags) {
		if err := c.descend(name, func() error { return c.check(nsName, declared.Tags, tags[name]) }); err != nil {
			return err
		}
	}
	return nil
}

// CheckAction checks that principal and resource are of types the action
// applies to and that context conforms to the declared context type.
func (f *Fragment) CheckAction(namespace, action string, principal, resource types.EntityUID, context map[string]*Value) error {
	ns := f.Namespaces[namespace]
	if ns == nil || ns.Actions[action] == nil {
		return &TypeError{Message: fmt.Sprintf("undeclared action %s", Join(namespace, "Action")+Separator+Quote(action))}
	}
	declared := ns.Actions[action]
	c := &checker{fragment: f, path: []string{action}}
	if declared.AppliesTo == nil {
		return c.fail("action does not apply to any principal or resource")
	}
	if err := c.member(namespace, "principal", string(principal.Type), declared.AppliesTo.PrincipalTypes); err != nil {
		return err
	}
	if err := c.member(namespace, "resource", string(resource.Type), declared.AppliesTo.ResourceTypes); err != nil {
		return err
	}
	contextType := declared.AppliesTo.Context
	if contextType == nil {
		contextType = Record(nil, false)
	}
	return c.descend("context", func() error {
		return c.check(namespace, contextType, RecordValue(context))
	})
}

func (c *checker) member(namespace, role, entityType string, allowed []string) error {
	for _, name := range allowed {
		if qualified, ok := c.fragment.EntityTypeName(namespace, name); ok && qualified == entityType {
			return nil
		}
	}
	return c.fail("%s type %s is not one of [%s]", role, entityType, strings.Join(allowed, ", "))
}

func (c *checker) check(namespace string, t *Type, v *Value) error {
	if v == nil {
		return c.fail("missing value")
	}
	if v.Kind == ValueOpaque {
		return c.checkOpaque(namespace, t, v.Opaque)
	}
	switch t.Kind {
	case TypeBoolean:
		return c.expect(v, ValueBool, "Bool")
	case TypeLong:
		return c.expect(v, ValueLong, "Long")
	case TypeString:
		return c.expect(v, ValueString, "String")
	case TypeExtension:
		if v.Kind != ValueExtension || v.Extension != t.Name {
			return c.fail("expected %s", t.Name)
		}
		return nil
	case TypeEntity, TypeEntityOrCommon, TypeCommonRef:
		d, ok := c.fragment.lookup(namespace, t.Name, t.Kind == TypeCommonRef, t.Kind == TypeEntity)
		if !ok {
			return c.fail("undeclared type %s", t.Name)
		}
		switch d.kind {
		case declBuiltin:
			return c.check(namespace, d.builtin, v)
		case declCommon:
			return c.check(d.namespace, d.common.Type, v)
		}
		if v.Kind != ValueEntity || v.EntityType != d.qualified {
			return c.fail("expected entity of type %s", d.qualified)
		}
		if d.entity.IsEnum() && !contains(d.entity.Enum, v.EntityID) {
			return c.fail("%q is not a member of %s", v.EntityID, d.qualified)
		}
		return nil
	case TypeSet:
		if v.Kind != ValueSet {
			return c.fail("expected Set")
		}
		for i, element := range v.Elements {
			if err := c.descend(fmt.Sprintf("[%d]", i), func() error { return c.check(namespace, t.Element, element) }); err != nil {
				return err
			}
		}
		return nil
	case TypeRecord:
		if v.Kind != ValueRecord {
			return c.fail("expected record")
		}
		for _, name := range sortedKeys(t.Attributes) {
			attr := t.Attributes[name]
			value, ok := v.Attributes[name]
			if !ok {
				if attr.Required {
					return c.fail("missing required attribute %q", name)
				}
				continue
			}
			if err := c.descend(name, func() error { return c.check(namespace, attr.Type, value) }); err != nil {
				return err
			}
		}
		if t.AdditionalAttributes {
			return nil
		}
		for _, name := range sortedKeys(v.Attributes) {
			if _, ok := t.Attributes[name]; !ok {
				return c.fail("unexpected attribute %q", name)
			}
		}
		return nil
	}
	return c.fail("unsupported type")
}

func (c *checker) expect(v *Value, kind ValueKind, name string) error {
	if v.Kind != kind {
		return c.fail("expected %s", name)
	}
	return nil
}

// checkOpaque checks only the outermost shape of a caller supplied value.
func (c *checker) checkOpaque(namespace string, t *Type, v types.Value) error {
	if t.Kind == TypeEntityOrCommon || t.Kind == TypeCommonRef || t.Kind == TypeEntity {
		d, ok := c.fragment.lookup(namespace, t.Name, t.Kind == TypeCommonRef, t.Kind == TypeEntity)
		if !ok {
			return c.fail("undeclared type %s", t.Name)
		}
		switch d.kind {
		case declBuiltin:
			return c.checkOpaque(namespace, d.builtin, v)
		case declCommon:
			return c.checkOpaque(d.namespace, d.common.Type, v)
		}
		uid, ok := v.(types.EntityUID)
		if !ok || string(uid.Type) != d.qualified {
			return c.fail("expected entity of type %s", d.qualified)
		}
		return nil
	}
	var ok bool
	switch t.Kind {
	case TypeBoolean:
		_, ok = v.(types.Boolean)
	case TypeLong:
		_, ok = v.(types.Long)
	case TypeString:
		_, ok = v.(types.String)
	case TypeSet:
		_, ok = v.(types.Set)
	case TypeRecord:
		_, ok = v.(types.Record)
	case TypeExtension:
		switch t.Name {
		case ExtensionDecimal:
			_, ok = v.(types.Decimal)
		case ExtensionDatetime:
			_, ok = v.(types.Datetime)
		case ExtensionDuration:
			_, ok = v.(types.Duration)
		case ExtensionIPAddr:
			_, ok = v.(types.IPAddr)
		}
	}
	if !ok {
		return c.fail("value does not match declared type")
	}
	return nil
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

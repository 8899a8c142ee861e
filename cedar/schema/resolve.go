package schema

import (
	"fmt"
	"strings"
)

const builtinNamespace = "__cedar"

// ResolutionError reports a name that does not resolve or a cyclic common type.
type ResolutionError struct {
	Namespace string
	Name      string
	Reason    string
}

func (e *ResolutionError) Error() string {
	namespace := e.Namespace
	if namespace == "" {
		namespace = "<global>"
	}
	return fmt.Sprintf("%s in namespace %s: %s", e.Reason, namespace, e.Name)
}

type declKind int

const (
	declBuiltin declKind = iota + 1
	declCommon
	declEntity
)

// decl is a resolved type name.
type decl struct {
	kind      declKind
	qualified string
	namespace string
	common    *CommonType
	entity    *EntityType
	builtin   *Type
}

func builtinType(name string) *Type {
	switch name {
	case "Bool", "Boolean":
		return Boolean()
	case "Long":
		return Long()
	case "String":
		return String()
	case ExtensionDecimal, ExtensionDatetime, ExtensionDuration, ExtensionIPAddr:
		return Extension(name)
	}
	return nil
}

// lookup resolves name as seen from namespace. Unqualified names are searched
// in namespace, then in the global namespace, then among builtins. Common
// types take precedence over entity types unless entityOnly is set.
func (f *Fragment) lookup(namespace, name string, commonOnly, entityOnly bool) (*decl, bool) {
	prefix, base := Split(name)
	var candidates []string
	switch {
	case prefix == builtinNamespace:
		if t := builtinType(base); t != nil && !entityOnly {
			return &decl{kind: declBuiltin, qualified: name, builtin: t}, true
		}
		return nil, false
	case strings.Contains(name, Separator):
		candidates = []string{prefix}
	default:
		candidates = []string{namespace, ""}
	}
	for _, candidate := range candidates {
		ns := f.Namespaces[candidate]
		if ns == nil {
			continue
		}
		if !entityOnly {
			if common, ok := ns.CommonTypes[base]; ok {
				return &decl{kind: declCommon, qualified: Join(candidate, base), namespace: candidate, common: common}, true
			}
		}
		if !commonOnly {
			if entity, ok := ns.EntityTypes[base]; ok {
				return &decl{kind: declEntity, qualified: Join(candidate, base), namespace: candidate, entity: entity}, true
			}
		}
	}
	if prefix == "" && !entityOnly {
		if t := builtinType(base); t != nil {
			return &decl{kind: declBuiltin, qualified: name, builtin: t}, true
		}
	}
	return nil, false
}

// EntityTypeName returns the fully qualified name of the entity type name
// refers to from namespace.
func (f *Fragment) EntityTypeName(namespace, name string) (string, bool) {
	d, ok := f.lookup(namespace, name, false, true)
	if !ok {
		return "", false
	}
	return d.qualified, true
}

// Validate checks that every referenced name resolves, that entity and
// action references point at declarations of the right kind and that common
// types are not cyclic.
func (f *Fragment) Validate() error {
	for _, nsName := range f.NamespaceNames() {
		ns := f.Namespaces[nsName]
		for _, name := range sortedKeys(ns.CommonTypes) {
			if err := f.validateType(nsName, ns.CommonTypes[name].Type); err != nil {
				return err
			}
		}
		for _, name := range sortedKeys(ns.EntityTypes) {
			entity := ns.EntityTypes[name]
			for _, parent := range entity.MemberOfTypes {
				if _, ok := f.lookup(nsName, parent, false, true); !ok {
					return &ResolutionError{Namespace: nsName, Name: parent, Reason: "undeclared entity type"}
				}
			}
			if err := f.validateType(nsName, entity.Shape); err != nil {
				return err
			}
			if err := f.validateType(nsName, entity.Tags); err != nil {
				return err
			}
		}
		for _, name := range sortedKeys(ns.Actions) {
			if err := f.validateAction(nsName, ns.Actions[name]); err != nil {
				return err
			}
		}
	}
	return f.commonTypeCycle()
}

func (f *Fragment) validateAction(nsName string, action *Action) error {
	for _, ref := range action.MemberOf {
		target := nsName
		if ref.Type != "" {
			prefix, base := Split(ref.Type)
			if base != "Action" {
				return &ResolutionError{Namespace: nsName, Name: ref.Type, Reason: "action group type must be Action"}
			}
			target = prefix
		}
		ns := f.Namespaces[target]
		if ns == nil || ns.Actions[ref.ID] == nil {
			return &ResolutionError{Namespace: nsName, Name: Join(target, "Action") + Separator + Quote(ref.ID), Reason: "undeclared action"}
		}
	}
	if action.AppliesTo == nil {
		return nil
	}
	for _, names := range [][]string{action.AppliesTo.PrincipalTypes, action.AppliesTo.ResourceTypes} {
		for _, name := range names {
			if _, ok := f.lookup(nsName, name, false, true); !ok {
				return &ResolutionError{Namespace: nsName, Name: name, Reason: "undeclared entity type"}
			}
		}
	}
	return f.validateType(nsName, action.AppliesTo.Context)
}

func (f *Fragment) validateType(nsName string, t *Type) error {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TypeExtension:
		if builtinType(t.Name) == nil || builtinType(t.Name).Kind != TypeExtension {
			return &ResolutionError{Namespace: nsName, Name: t.Name, Reason: "unknown extension type"}
		}
	case TypeEntity:
		if _, ok := f.lookup(nsName, t.Name, false, true); !ok {
			return &ResolutionError{Namespace: nsName, Name: t.Name, Reason: "undeclared entity type"}
		}
	case TypeEntityOrCommon:
		if _, ok := f.lookup(nsName, t.Name, false, false); !ok {
			return &ResolutionError{Namespace: nsName, Name: t.Name, Reason: "undeclared type"}
		}
	case TypeCommonRef:
		if _, ok := f.lookup(nsName, t.Name, true, false); !ok {
			return &ResolutionError{Namespace: nsName, Name: t.Name, Reason: "undeclared common type"}
		}
	case TypeSet:
		return f.validateType(nsName, t.Element)
	case TypeRecord:
		for _, name := range sortedKeys(t.Attributes) {
			if err := f.validateType(nsName, t.Attributes[name].Type); err != nil {
				return err
			}
		}
	}
	return nil
}

// commonTypeCycle reports a common type that expands into itself.
func (f *Fragment) commonTypeCycle() error {
	const (
		visiting = 1
		done     = 2
	)
	state := map[string]int{}
	var visit func(nsName, name string, t *Type) error
	var walk func(nsName string, t *Type) error
	walk = func(nsName string, t *Type) error {
		if t == nil {
			return nil
		}
		switch t.Kind {
		case TypeEntityOrCommon, TypeCommonRef:
			if d, ok := f.lookup(nsName, t.Name, t.Kind == TypeCommonRef, false); ok && d.kind == declCommon {
				return visit(d.namespace, d.qualified, d.common.Type)
			}
		case TypeSet:
			return walk(nsName, t.Element)
		case TypeRecord:
			for _, attr := range sortedKeys(t.Attributes) {
				if err := walk(nsName, t.Attributes[attr].Type); err != nil {
					return err
				}
			}
		}
		return nil
	}
	visit = func(nsName, qualified string, t *Type) error {
		switch state[qualified] {
		case visiting:
			return &ResolutionError{Namespace: nsName, Name: qualified, Reason: "cyclic common type"}
		case done:
			return nil
		}
		state[qualified] = visiting
		if err := walk(nsName, t); err != nil {
			return err
		}
		state[qualified] = done
		return nil
	}
	for _, nsName := range f.NamespaceNames() {
		ns := f.Namespaces[nsName]
		for _, name := range sortedKeys(ns.CommonTypes) {
			if err := visit(nsName, Join(nsName, name), ns.CommonTypes[name].Type); err != nil {
				return err
			}
		}
	}
	return nil
}

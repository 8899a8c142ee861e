package schema

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes the fragment in the Cedar JSON schema format.
func (f *Fragment) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, len(f.Namespaces))
	for name, ns := range f.Namespaces {
		doc[name] = ns.toJSON()
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes the Cedar JSON schema format.
func (f *Fragment) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	f.Namespaces = make(map[string]*Namespace, len(doc))
	for name, raw := range doc {
		ns, err := namespaceFromJSON(raw)
		if err != nil {
			return fmt.Errorf("namespace %q: %w", name, err)
		}
		f.Namespaces[name] = ns
	}
	return nil
}

func (n *Namespace) toJSON() map[string]interface{} {
	entityTypes := make(map[string]interface{}, len(n.EntityTypes))
	for name, e := range n.EntityTypes {
		entityTypes[name] = e.toJSON()
	}
	actions := make(map[string]interface{}, len(n.Actions))
	for name, a := range n.Actions {
		actions[name] = a.toJSON()
	}
	ret := map[string]interface{}{
		"entityTypes": entityTypes,
		"actions":     actions,
	}
	if len(n.CommonTypes) > 0 {
		commonTypes := make(map[string]interface{}, len(n.CommonTypes))
		for name, t := range n.CommonTypes {
			encoded := t.Type.toJSON()
			if len(t.Annotations) > 0 {
				encoded["annotations"] = t.Annotations
			}
			commonTypes[name] = encoded
		}
		ret["commonTypes"] = commonTypes
	}
	if len(n.Annotations) > 0 {
		ret["annotations"] = n.Annotations
	}
	return ret
}

func (e *EntityType) toJSON() map[string]interface{} {
	ret := map[string]interface{}{}
	if e.IsEnum() {
		ret["enum"] = e.Enum
	} else {
		if len(e.MemberOfTypes) > 0 {
			ret["memberOfTypes"] = e.MemberOfTypes
		}
		if e.Shape != nil {
			ret["shape"] = e.Shape.toJSON()
		}
		if e.Tags != nil {
			ret["tags"] = e.Tags.toJSON()
		}
	}
	if len(e.Annotations) > 0 {
		ret["annotations"] = e.Annotations
	}
	return ret
}

func (a *Action) toJSON() map[string]interface{} {
	ret := map[string]interface{}{}
	if a.MemberOf != nil {
		refs := make([]map[string]string, 0, len(a.MemberOf))
		for _, ref := range a.MemberOf {
			encoded := map[string]string{"id": ref.ID}
			if ref.Type != "" {
				encoded["type"] = ref.Type
			}
			refs = append(refs, encoded)
		}
		ret["memberOf"] = refs
	}
	if a.AppliesTo != nil {
		appliesTo := map[string]interface{}{
			"principalTypes": nonNil(a.AppliesTo.PrincipalTypes),
			"resourceTypes":  nonNil(a.AppliesTo.ResourceTypes),
		}
		if a.AppliesTo.Context != nil {
			appliesTo["context"] = a.AppliesTo.Context.toJSON()
		}
		ret["appliesTo"] = appliesTo
	}
	if len(a.Annotations) > 0 {
		ret["annotations"] = a.Annotations
	}
	return ret
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func (t *Type) toJSON() map[string]interface{} {
	switch t.Kind {
	case TypeBoolean:
		return map[string]interface{}{"type": "Boolean"}
	case TypeLong:
		return map[string]interface{}{"type": "Long"}
	case TypeString:
		return map[string]interface{}{"type": "String"}
	case TypeExtension:
		return map[string]interface{}{"type": "Extension", "name": t.Name}
	case TypeEntity:
		return map[string]interface{}{"type": "Entity", "name": t.Name}
	case TypeEntityOrCommon:
		return map[string]interface{}{"type": "EntityOrCommon", "name": t.Name}
	case TypeCommonRef:
		return map[string]interface{}{"type": t.Name}
	case TypeSet:
		return map[string]interface{}{"type": "Set", "element": t.Element.toJSON()}
	}
	attributes := make(map[string]interface{}, len(t.Attributes))
	for name, attr := range t.Attributes {
		encoded := attr.Type.toJSON()
		if !attr.Required {
			encoded["required"] = false
		}
		if len(attr.Annotations) > 0 {
			encoded["annotations"] = attr.Annotations
		}
		attributes[name] = encoded
	}
	ret := map[string]interface{}{"type": "Record", "attributes": attributes}
	if t.AdditionalAttributes {
		ret["additionalAttributes"] = true
	}
	return ret
}

type namespaceJSON struct {
	CommonTypes map[string]json.RawMessage `json:"commonTypes"`
	EntityTypes map[string]entityTypeJSON  `json:"entityTypes"`
	Actions     map[string]actionJSON      `json:"actions"`
	Annotations Annotations                `json:"annotations"`
}

type entityTypeJSON struct {
	MemberOfTypes []string        `json:"memberOfTypes"`
	Shape         json.RawMessage `json:"shape"`
	Tags          json.RawMessage `json:"tags"`
	Enum          []string        `json:"enum"`
	Annotations   Annotations     `json:"annotations"`
}

type actionJSON struct {
	MemberOf  []actionRefJSON `json:"memberOf"`
	AppliesTo *struct {
		PrincipalTypes []string        `json:"principalTypes"`
		ResourceTypes  []string        `json:"resourceTypes"`
		Context        json.RawMessage `json:"context"`
	} `json:"appliesTo"`
	Annotations Annotations `json:"annotations"`
}

type actionRefJSON struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

type typeJSON struct {
	Type                 string                     `json:"type"`
	Name                 string                     `json:"name"`
	Element              json.RawMessage            `json:"element"`
	Attributes           map[string]json.RawMessage `json:"attributes"`
	AdditionalAttributes bool                       `json:"additionalAttributes"`
	Required             *bool                      `json:"required"`
	Annotations          Annotations                `json:"annotations"`
}

func namespaceFromJSON(data []byte) (*Namespace, error) {
	var doc namespaceJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	ret := NewNamespace()
	ret.Annotations = doc.Annotations
	for name, raw := range doc.CommonTypes {
		t, decoded, err := typeFromJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("common type %q: %w", name, err)
		}
		ret.CommonTypes[name] = &CommonType{Type: t, Annotations: decoded.Annotations}
	}
	for name, e := range doc.EntityTypes {
		entity := &EntityType{MemberOfTypes: e.MemberOfTypes, Enum: e.Enum, Annotations: e.Annotations}
		var err error
		if len(e.Shape) > 0 {
			if entity.Shape, _, err = typeFromJSON(e.Shape); err != nil {
				return nil, fmt.Errorf("entity type %q shape: %w", name, err)
			}
		}
		if len(e.Tags) > 0 {
			if entity.Tags, _, err = typeFromJSON(e.Tags); err != nil {
				return nil, fmt.Errorf("entity type %q tags: %w", name, err)
			}
		}
		ret.EntityTypes[name] = entity
	}
	for name, a := range doc.Actions {
		action := &Action{Annotations: a.Annotations}
		if a.MemberOf != nil {
			action.MemberOf = make([]ActionRef, 0, len(a.MemberOf))
			for _, ref := range a.MemberOf {
				action.MemberOf = append(action.MemberOf, ActionRef{ID: ref.ID, Type: ref.Type})
			}
		}
		if a.AppliesTo != nil {
			action.AppliesTo = &AppliesTo{PrincipalTypes: a.AppliesTo.PrincipalTypes, ResourceTypes: a.AppliesTo.ResourceTypes}
			if len(a.AppliesTo.Context) > 0 {
				var err error
				if action.AppliesTo.Context, _, err = typeFromJSON(a.AppliesTo.Context); err != nil {
					return nil, fmt.Errorf("action %q context: %w", name, err)
				}
			}
		}
		ret.Actions[name] = action
	}
	return ret, nil
}

func typeFromJSON(data []byte) (*Type, *typeJSON, error) {
	var doc typeJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}
	switch doc.Type {
	case "Boolean", "Bool":
		return Boolean(), &doc, nil
	case "Long":
		return Long(), &doc, nil
	case "String":
		return String(), &doc, nil
	case "Extension":
		return Extension(doc.Name), &doc, nil
	case "Entity":
		return Entity(doc.Name), &doc, nil
	case "EntityOrCommon":
		return EntityOrCommon(doc.Name), &doc, nil
	case "Set":
		if len(doc.Element) == 0 {
			return nil, nil, fmt.Errorf("set type without element")
		}
		element, _, err := typeFromJSON(doc.Element)
		if err != nil {
			return nil, nil, err
		}
		return Set(element), &doc, nil
	case "Record":
		attributes := make(map[string]*Attribute, len(doc.Attributes))
		for name, raw := range doc.Attributes {
			t, decoded, err := typeFromJSON(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("attribute %q: %w", name, err)
			}
			required := decoded.Required == nil || *decoded.Required
			attributes[name] = &Attribute{Type: t, Required: required, Annotations: decoded.Annotations}
		}
		return Record(attributes, doc.AdditionalAttributes), &doc, nil
	case "":
		return nil, nil, fmt.Errorf("missing type")
	}
	return CommonRef(doc.Type), &doc, nil
}

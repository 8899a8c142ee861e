package description

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const refPrefix = "#/$defs/"

// ParseServerDescription decodes a tools/list result envelope
// ({"result":{"tools":[...],"$defs":{...}}}), a bare array of tools or a
// single tool object.
func ParseServerDescription(data []byte) (*ServerDescription, error) {
	doc, err := parseDocument(data, ContentServerDescription)
	if err != nil {
		return nil, err
	}
	return serverDescription(doc)
}

// ParseToolDescription decodes a single tool object.
func ParseToolDescription(data []byte) (*ToolDescription, error) {
	doc, err := parseDocument(data, ContentToolDescription)
	if err != nil {
		return nil, err
	}
	return toolDescription(doc)
}

// ParseParameters decodes a tool input or output schema.
func ParseParameters(data []byte) (*Parameters, error) {
	doc, err := parseDocument(data, ContentToolParameters)
	if err != nil {
		return nil, err
	}
	return parameters(doc)
}

// ParsePropertyType decodes a single JSON Schema node.
func ParsePropertyType(data []byte) (*PropertyType, error) {
	doc, err := parseDocument(data, ContentPropertyType)
	if err != nil {
		return nil, err
	}
	return propertyType(doc)
}

func parseDocument(data []byte, content ContentType) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, &Error{Kind: ErrParse, Content: content, Message: "invalid JSON"}
	}
	return gjson.ParseBytes(data), nil
}

func serverDescription(doc gjson.Result) (*ServerDescription, error) {
	var tools gjson.Result
	var defs []*PropertyTypeDef
	switch {
	case doc.IsObject():
		result, ok := member(doc, "result")
		if !ok {
			tool, err := toolDescription(doc)
			if err != nil {
				return nil, err
			}
			return NewServerDescription([]*ToolDescription{tool}, nil)
		}
		if !result.IsObject() {
			return nil, unexpectedType(ContentServerDescription, "object", result)
		}
		if tools, ok = member(result, "tools"); !ok {
			return nil, missingAttribute(ContentServerDescription, result, "tools")
		}
		var err error
		if defs, err = typeDefs(result, ContentServerDescription); err != nil {
			return nil, err
		}
	case doc.IsArray():
		tools = doc
	default:
		return nil, unexpectedType(ContentServerDescription, "object or array", doc)
	}
	if !tools.IsArray() {
		return nil, unexpectedType(ContentServerDescription, "array", tools)
	}
	ret := &ServerDescription{index: map[string]int{}, Defs: defs}
	var err error
	tools.ForEach(func(_, value gjson.Result) bool {
		var tool *ToolDescription
		if tool, err = toolDescription(value); err != nil {
			return false
		}
		if addErr := ret.Add(tool); addErr != nil {
			err = &Error{Kind: ErrUnexpectedValue, Content: ContentServerDescription, Offset: value.Index,
				Message: fmt.Sprintf("duplicate tool name %q", tool.Name)}
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func toolDescription(doc gjson.Result) (*ToolDescription, error) {
	if !doc.IsObject() {
		return nil, unexpectedType(ContentToolDescription, "object", doc)
	}
	ret := &ToolDescription{}
	name, ok := member(doc, "name")
	if !ok {
		return nil, missingAttribute(ContentToolDescription, doc, "name")
	}
	if name.Type != gjson.String {
		return nil, unexpectedType(ContentToolDescription, "string", name)
	}
	ret.Name = name.Str
	if desc, ok := member(doc, "description"); ok {
		if desc.Type != gjson.String {
			return nil, unexpectedType(ContentToolDescription, "string", desc)
		}
		ret.Description = desc.Str
	}
	input, ok := member(doc, "parameters", "inputSchema")
	if !ok {
		return nil, missingAttribute(ContentToolDescription, doc, "parameters", "inputSchema")
	}
	var err error
	if ret.Inputs, err = parameters(input); err != nil {
		return nil, err
	}
	ret.Outputs = &Parameters{}
	if output, ok := member(doc, "outputSchema"); ok && output.Type != gjson.Null {
		if ret.Outputs, err = parameters(output); err != nil {
			return nil, err
		}
	}
	if ret.Defs, err = typeDefs(doc, ContentToolDescription); err != nil {
		return nil, err
	}
	return ret, nil
}

func parameters(doc gjson.Result) (*Parameters, error) {
	if doc.IsObject() {
		if wrapped, ok := member(doc, "json"); ok {
			doc = wrapped
		}
	}
	if !doc.IsObject() {
		return nil, unexpectedType(ContentToolParameters, "object", doc)
	}
	ret := &Parameters{}
	var err error
	if ret.Defs, err = typeDefs(doc, ContentToolParameters); err != nil {
		return nil, err
	}
	required, err := requiredNames(doc, ContentToolParameters)
	if err != nil {
		return nil, err
	}
	if ret.Properties, err = properties(doc, required, ContentToolParameters); err != nil {
		return nil, err
	}
	return ret, nil
}

// requiredNames reads "required", which is either an array of strings, false or null.
func requiredNames(doc gjson.Result, content ContentType) (map[string]bool, error) {
	ret := map[string]bool{}
	value, ok := member(doc, "required")
	if !ok || value.Type == gjson.False || value.Type == gjson.Null {
		return ret, nil
	}
	if !value.IsArray() {
		return nil, unexpectedType(content, "array", value)
	}
	var err error
	value.ForEach(func(_, item gjson.Result) bool {
		if item.Type != gjson.String {
			err = unexpectedType(content, "string", item)
			return false
		}
		ret[item.Str] = true
		return true
	})
	return ret, err
}

// properties reads "properties", which is either an object, false or null.
func properties(doc gjson.Result, required map[string]bool, content ContentType) ([]*Property, error) {
	value, ok := member(doc, "properties")
	if !ok || value.Type == gjson.False || value.Type == gjson.Null {
		return nil, nil
	}
	if !value.IsObject() {
		return nil, unexpectedType(content, "object", value)
	}
	var ret []*Property
	seen := map[string]bool{}
	var err error
	value.ForEach(func(key, item gjson.Result) bool {
		if seen[key.Str] {
			err = &Error{Kind: ErrUnexpectedValue, Content: ContentProperty, Offset: key.Index,
				Message: fmt.Sprintf("duplicate property %q", key.Str)}
			return false
		}
		seen[key.Str] = true
		var prop *Property
		if prop, err = property(key.Str, item, required[key.Str]); err != nil {
			return false
		}
		ret = append(ret, prop)
		return true
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func property(name string, doc gjson.Result, required bool) (*Property, error) {
	propType, err := propertyType(doc)
	if err != nil {
		return nil, err
	}
	return &Property{Name: name, Required: required, Type: propType, Description: description(doc)}, nil
}

func typeDefs(doc gjson.Result, content ContentType) ([]*PropertyTypeDef, error) {
	value, ok := member(doc, "$defs")
	if !ok {
		return nil, nil
	}
	if !value.IsObject() {
		return nil, unexpectedType(content, "object", value)
	}
	var ret []*PropertyTypeDef
	var err error
	value.ForEach(func(key, item gjson.Result) bool {
		var defType *PropertyType
		if defType, err = propertyType(item); err != nil {
			return false
		}
		ret = append(ret, &PropertyTypeDef{Name: key.Str, Type: defType, Description: description(item)})
		return true
	})
	if err != nil {
		return nil, err
	}
	if cycle := aliasCycle(ret); len(cycle) > 0 {
		return nil, &Error{Kind: ErrTypeDefinitionCycle, Content: content, Offset: value.Index, Cycle: cycle}
	}
	return ret, nil
}

func propertyType(doc gjson.Result) (*PropertyType, error) {
	if !doc.IsObject() {
		return nil, unexpectedType(ContentPropertyType, "object", doc)
	}
	typ, ok := member(doc, "type")
	if !ok {
		return untypedPropertyType(doc)
	}
	switch {
	case typ.Type == gjson.String:
		return namedPropertyType(doc, typ)
	case typ.IsArray():
		var members []*PropertyType
		var err error
		typ.ForEach(func(_, item gjson.Result) bool {
			var elem *PropertyType
			switch {
			case item.Type == gjson.String:
				if elem, err = scalarPropertyType(item); err != nil {
					return false
				}
			case item.IsObject():
				if elem, err = propertyType(item); err != nil {
					return false
				}
			default:
				err = unexpectedType(ContentPropertyType, "string or object", item)
				return false
			}
			members = append(members, elem)
			return true
		})
		if err != nil {
			return nil, err
		}
		return Tuple(members...), nil
	case typ.IsBool() || typ.Type == gjson.Null:
		return Unknown(), nil
	}
	return nil, unexpectedType(ContentPropertyType, "string or array", typ)
}

func scalarPropertyType(typ gjson.Result) (*PropertyType, error) {
	switch typ.Str {
	case "boolean":
		return Bool(), nil
	case "integer":
		return Integer(), nil
	case "float":
		return Float(), nil
	case "number":
		return Number(), nil
	case "string":
		return String(), nil
	case "null":
		return Null(), nil
	}
	return nil, unexpectedValue(typ, "unsupported type %q", typ.Str)
}

func namedPropertyType(doc, typ gjson.Result) (*PropertyType, error) {
	switch typ.Str {
	case "string":
		if enum, ok := member(doc, "enum"); ok {
			return enumType(enum)
		}
		format, ok := member(doc, "format")
		if !ok {
			return String(), nil
		}
		if format.Type != gjson.String {
			return nil, unexpectedType(ContentPropertyType, "string", format)
		}
		switch format.Str {
		case "date", "date-time":
			return Datetime(), nil
		case "duration":
			return Duration(), nil
		case "ipv4", "ipv6":
			return IPAddr(), nil
		case "decimal":
			return Decimal(), nil
		}
		return String(), nil
	case "array":
		items, ok := member(doc, "items")
		if !ok || items.IsBool() || items.Type == gjson.Null {
			return Array(Unknown()), nil
		}
		if !items.IsObject() {
			return nil, unexpectedType(ContentPropertyType, "object or boolean", items)
		}
		element, err := propertyType(items)
		if err != nil {
			return nil, err
		}
		return Array(element), nil
	case "object":
		return objectType(doc)
	}
	return scalarPropertyType(typ)
}

// objectType reads properties and required strictly. An additionalProperties
// value that is not a valid schema, such as true, is dropped.
func objectType(doc gjson.Result) (*PropertyType, error) {
	required, err := requiredNames(doc, ContentPropertyType)
	if err != nil {
		return nil, err
	}
	props, err := properties(doc, required, ContentPropertyType)
	if err != nil {
		return nil, err
	}
	var additional *PropertyType
	if value, ok := member(doc, "additionalProperties"); ok {
		if additional, err = propertyType(value); err != nil {
			additional = nil
		}
	}
	return Object(props, additional), nil
}

func untypedPropertyType(doc gjson.Result) (*PropertyType, error) {
	if alternatives, ok := member(doc, "anyOf", "oneOf"); ok {
		if !alternatives.IsArray() {
			return nil, unexpectedType(ContentPropertyType, "array", alternatives)
		}
		var types []*PropertyType
		var err error
		alternatives.ForEach(func(_, item gjson.Result) bool {
			var alternative *PropertyType
			if alternative, err = propertyType(item); err != nil {
				return false
			}
			types = append(types, alternative)
			return true
		})
		if err != nil {
			return nil, err
		}
		return Union(types...), nil
	}
	if ref, ok := member(doc, "$ref"); ok {
		if ref.Type != gjson.String {
			return nil, unexpectedType(ContentPropertyType, "string", ref)
		}
		if !strings.HasPrefix(ref.Str, refPrefix) {
			return nil, unexpectedValue(ref, "unsupported reference %q, expected %s<name>", ref.Str, refPrefix)
		}
		return Ref(strings.TrimPrefix(ref.Str, refPrefix)), nil
	}
	if enum, ok := member(doc, "enum"); ok {
		return enumType(enum)
	}
	return Unknown(), nil
}

func enumType(enum gjson.Result) (*PropertyType, error) {
	if !enum.IsArray() {
		return nil, unexpectedType(ContentPropertyType, "array", enum)
	}
	var variants []string
	var err error
	enum.ForEach(func(_, item gjson.Result) bool {
		if item.Type != gjson.String {
			err = unexpectedType(ContentPropertyType, "string", item)
			return false
		}
		variants = append(variants, item.Str)
		return true
	})
	if err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return nil, unexpectedValue(enum, "enum must list at least one variant")
	}
	return Enum(variants...), nil
}

func description(doc gjson.Result) string {
	if value, ok := member(doc, "description"); ok && value.Type == gjson.String {
		return value.Str
	}
	return ""
}

// member returns the first present key among names. Keys are compared
// literally rather than through gjson path syntax.
func member(doc gjson.Result, names ...string) (gjson.Result, bool) {
	if !doc.IsObject() {
		return gjson.Result{}, false
	}
	for _, name := range names {
		var found gjson.Result
		var ok bool
		doc.ForEach(func(key, value gjson.Result) bool {
			if key.Str == name {
				found, ok = value, true
				return false
			}
			return true
		})
		if ok {
			return found, true
		}
	}
	return gjson.Result{}, false
}

func objectKeys(doc gjson.Result) []string {
	var ret []string
	doc.ForEach(func(key, _ gjson.Result) bool {
		ret = append(ret, key.Str)
		return true
	})
	return ret
}

func jsonType(value gjson.Result) string {
	switch value.Type {
	case gjson.Null:
		return "null"
	case gjson.False, gjson.True:
		return "boolean"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	}
	if value.IsArray() {
		return "array"
	}
	return "object"
}

func unexpectedType(content ContentType, expected string, found gjson.Result) *Error {
	return &Error{Kind: ErrUnexpectedType, Content: content, Offset: found.Index, Expected: expected, Found: jsonType(found)}
}

func unexpectedValue(found gjson.Result, format string, args ...interface{}) *Error {
	return &Error{Kind: ErrUnexpectedValue, Content: ContentPropertyType, Offset: found.Index, Message: fmt.Sprintf(format, args...)}
}

func missingAttribute(content ContentType, doc gjson.Result, name string, aliases ...string) *Error {
	return &Error{Kind: ErrMissingAttribute, Content: content, Offset: doc.Index, Attribute: name, Aliases: aliases, Keys: objectKeys(doc)}
}

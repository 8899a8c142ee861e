package validation

import (
	"math"
	"strconv"

	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/description"
	"github.com/tidwall/gjson"
)

// ValidateInput finds the tool named by input and validates the arguments.
func ValidateInput(server *description.ServerDescription, input *description.Input) (*TypedInput, error) {
	tool, ok := server.Tool(input.Name)
	if !ok {
		return nil, &Error{Kind: ErrToolNotFound, Name: input.Name}
	}
	return ValidateToolInput(server, tool, input)
}

// ValidateToolInput validates input against tool. Type references resolve
// through the parameter, tool and server $defs, nearest first. Keys not
// declared by the input schema are rejected.
func ValidateToolInput(server *description.ServerDescription, tool *description.ToolDescription, input *description.Input) (*TypedInput, error) {
	if tool.Name != input.Name {
		return nil, &Error{Kind: ErrMismatchedNames, Expected: tool.Name, Found: input.Name}
	}
	args, err := validateParameters(tool.Inputs, description.InputRegistry(server, tool), input.Args)
	if err != nil {
		return nil, err
	}
	return &TypedInput{Name: tool.Name, Args: args}, nil
}

// ValidateOutput validates structured content returned by the named tool.
func ValidateOutput(server *description.ServerDescription, toolName string, output *description.Output) (*TypedOutput, error) {
	tool, ok := server.Tool(toolName)
	if !ok {
		return nil, &Error{Kind: ErrToolNotFound, Name: toolName}
	}
	return ValidateToolOutput(server, tool, output)
}

// ValidateToolOutput validates output against the tool output schema.
func ValidateToolOutput(server *description.ServerDescription, tool *description.ToolDescription, output *description.Output) (*TypedOutput, error) {
	values, err := validateParameters(tool.Outputs, description.OutputRegistry(server, tool), output.Values)
	if err != nil {
		return nil, err
	}
	return &TypedOutput{Name: tool.Name, Values: values}, nil
}

// ValidateValue validates a single raw value against t.
func ValidateValue(t *description.PropertyType, value gjson.Result, registry *description.Registry) (*TypedValue, error) {
	return validateValue(t, value, registry, nil)
}

func validateParameters(params *description.Parameters, registry *description.Registry, args description.Arguments) ([]TypedArgument, error) {
	var ret []TypedArgument
	if params != nil {
		for _, prop := range params.Properties {
			raw, ok := args.Get(prop.Name)
			if !ok {
				if prop.Required {
					return nil, &Error{Kind: ErrMissingRequiredProperty, Name: prop.Name}
				}
				continue
			}
			value, err := validateValue(prop.Type, raw, registry, nil)
			if err != nil {
				return nil, err
			}
			ret = append(ret, TypedArgument{Name: prop.Name, Value: value})
		}
	}
	for _, arg := range args {
		if _, ok := params.Property(arg.Name); !ok {
			return nil, &Error{Kind: ErrUnexpectedProperty, Name: arg.Name}
		}
	}
	return ret, nil
}

// refKey identifies a definition by the registry level that declared it.
type refKey struct {
	level *description.Registry
	name  string
}

// validateValue checks value against t. refs tracks the references followed
// since the last structural descent, so that alias loops cannot recurse forever.
func validateValue(t *description.PropertyType, value gjson.Result, registry *description.Registry, refs []refKey) (*TypedValue, error) {
	switch t.Kind {
	case description.KindBool:
		if !value.IsBool() {
			return nil, invalidValue(t, value)
		}
		return &TypedValue{Kind: t.Kind, Bool: value.Bool()}, nil
	case description.KindInteger:
		if value.Type != gjson.Number {
			return nil, invalidValue(t, value)
		}
		i, err := strconv.ParseInt(value.Raw, 10, 64)
		if err != nil {
			return nil, &Error{Kind: ErrInvalidIntegerLiteral, Literal: value.Raw}
		}
		return &TypedValue{Kind: t.Kind, Int: i, Text: value.Raw}, nil
	case description.KindFloat:
		if value.Type != gjson.Number {
			return nil, invalidValue(t, value)
		}
		f, err := strconv.ParseFloat(value.Raw, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, &Error{Kind: ErrInvalidFloatLiteral, Literal: value.Raw}
		}
		return &TypedValue{Kind: t.Kind, Float: f, Text: value.Raw}, nil
	case description.KindNumber:
		if value.Type != gjson.Number {
			return nil, invalidValue(t, value)
		}
		return &TypedValue{Kind: t.Kind, Text: value.Raw}, nil
	case description.KindString:
		if value.Type != gjson.String {
			return nil, invalidValue(t, value)
		}
		return &TypedValue{Kind: t.Kind, Text: value.Str}, nil
	case description.KindDecimal:
		if value.Type != gjson.String {
			return nil, invalidValue(t, value)
		}
		if !IsDecimal(value.Str) {
			return nil, &Error{Kind: ErrInvalidDecimalLiteral, Literal: value.Str}
		}
		return &TypedValue{Kind: t.Kind, Text: value.Str}, nil
	case description.KindDatetime:
		if value.Type != gjson.String {
			return nil, invalidValue(t, value)
		}
		if _, err := ParseDatetime(value.Str); err != nil {
			return nil, &Error{Kind: ErrInvalidDatetimeLiteral, Literal: value.Str}
		}
		return &TypedValue{Kind: t.Kind, Text: value.Str}, nil
	case description.KindDuration:
		if value.Type != gjson.String {
			return nil, invalidValue(t, value)
		}
		if _, err := ParseDuration(value.Str); err != nil {
			return nil, &Error{Kind: ErrInvalidDurationLiteral, Literal: value.Str}
		}
		return &TypedValue{Kind: t.Kind, Text: value.Str}, nil
	case description.KindIPAddr:
		if value.Type != gjson.String {
			return nil, invalidValue(t, value)
		}
		if _, err := ParseIPAddr(value.Str); err != nil {
			return nil, &Error{Kind: ErrInvalidIPAddrLiteral, Literal: value.Str}
		}
		return &TypedValue{Kind: t.Kind, Text: value.Str}, nil
	case description.KindNull:
		if value.Type != gjson.Null {
			return nil, invalidValue(t, value)
		}
		return &TypedValue{Kind: t.Kind}, nil
	case description.KindEnum:
		if value.Type != gjson.String {
			return nil, invalidValue(t, value)
		}
		for _, variant := range t.Variants {
			if variant == value.Str {
				return &TypedValue{Kind: t.Kind, Text: value.Str}, nil
			}
		}
		return nil, &Error{Kind: ErrInvalidEnumVariant, Literal: value.Str}
	case description.KindArray:
		if !value.IsArray() {
			return nil, invalidValue(t, value)
		}
		ret := &TypedValue{Kind: t.Kind}
		for _, item := range value.Array() {
			element, err := validateValue(t.Element, item, registry, nil)
			if err != nil {
				return nil, err
			}
			ret.Elements = append(ret.Elements, element)
		}
		return ret, nil
	case description.KindTuple:
		if !value.IsArray() {
			return nil, invalidValue(t, value)
		}
		items := value.Array()
		if len(items) != len(t.Types) {
			return nil, &Error{Kind: ErrWrongTupleSize, ExpectedSize: len(t.Types), FoundSize: len(items)}
		}
		ret := &TypedValue{Kind: t.Kind}
		for i, item := range items {
			element, err := validateValue(t.Types[i], item, registry, nil)
			if err != nil {
				return nil, err
			}
			ret.Elements = append(ret.Elements, element)
		}
		return ret, nil
	case description.KindUnion:
		for i, alternative := range t.Types {
			if inner, err := validateValue(alternative, value, registry, refs); err == nil {
				return &TypedValue{Kind: t.Kind, Index: i, Inner: inner}, nil
			}
		}
		return nil, &Error{Kind: ErrInvalidValueForUnionType, Literal: value.Raw}
	case description.KindObject:
		return validateObject(t, value, registry)
	case description.KindRef:
		def, level, ok := registry.Lookup(t.Ref)
		if !ok {
			return nil, &Error{Kind: ErrUnexpectedTypeName, Name: t.Ref}
		}
		key := refKey{level: level, name: t.Ref}
		for _, seen := range refs {
			if seen == key {
				return nil, &Error{Kind: ErrCyclicTypeReference, Name: t.Ref}
			}
		}
		inner, err := validateValue(def.Type, value, level, append(refs, key))
		if err != nil {
			return nil, err
		}
		return &TypedValue{Kind: t.Kind, Ref: t.Ref, Inner: inner}, nil
	case description.KindUnknown:
		return &TypedValue{Kind: t.Kind, Raw: value}, nil
	}
	return nil, invalidValue(t, value)
}

func validateObject(t *description.PropertyType, value gjson.Result, registry *description.Registry) (*TypedValue, error) {
	if !value.IsObject() {
		return nil, invalidValue(t, value)
	}
	ret := &TypedValue{
		Kind:       t.Kind,
		Properties: map[string]*TypedValue{},
		Open:       t.AdditionalProperties != nil,
	}
	var members description.Arguments
	value.ForEach(func(key, item gjson.Result) bool {
		members = append(members, description.Argument{Name: key.Str, Value: item})
		return true
	})
	for _, prop := range t.Properties {
		raw, ok := members.Get(prop.Name)
		if !ok {
			if prop.Required {
				return nil, &Error{Kind: ErrMissingRequiredProperty, Name: prop.Name}
			}
			continue
		}
		typed, err := validateValue(prop.Type, raw, registry, nil)
		if err != nil {
			return nil, err
		}
		ret.Properties[prop.Name] = typed
	}
	for _, member := range members {
		if _, ok := t.Property(member.Name); ok {
			continue
		}
		if t.AdditionalProperties == nil {
			return nil, &Error{Kind: ErrUnexpectedProperty, Name: member.Name}
		}
		typed, err := validateValue(t.AdditionalProperties, member.Value, registry, nil)
		if err != nil {
			return nil, err
		}
		if ret.AdditionalProperties == nil {
			ret.AdditionalProperties = map[string]*TypedValue{}
		}
		ret.AdditionalProperties[member.Name] = typed
	}
	return ret, nil
}

func invalidValue(t *description.PropertyType, value gjson.Result) *Error {
	literal := value.Raw
	if !value.Exists() {
		literal = "<missing>"
	}
	return &Error{Kind: ErrInvalidValueForType, Literal: literal, Expected: t.Kind.String()}
}

package generator

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/cedar-policy/cedar-for-agents-sub000/cedar/schema"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/description"
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/validation"
	"github.com/cedar-policy/cedar-go"
	"github.com/cedar-policy/cedar-go/types"
	"github.com/rs/zerolog"
)

const actionTypeName = "Action"

// RequestGenerator compiles tool calls into Cedar requests that type check
// against the schema of the generator it was created from. It is immutable
// and safe for concurrent use.
type RequestGenerator struct {
	config    Config
	logger    zerolog.Logger
	namespace string
	fragment  *schema.Fragment
	tools     map[string]*requestTool
}

type requestTool struct {
	server *description.ServerDescription
	tool   *description.ToolDescription
}

// Namespace returns the stub namespace.
func (r *RequestGenerator) Namespace() string { return r.namespace }

// Schema returns the schema requests are checked against.
func (r *RequestGenerator) Schema() *schema.Fragment { return r.fragment }

// ToolNames returns the names of the tools requests can be generated for.
func (r *RequestGenerator) ToolNames() []string {
	ret := make([]string, 0, len(r.tools))
	for name := range r.tools {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// Action returns the uid of the action generated for tool.
func (r *RequestGenerator) Action(tool string) types.EntityUID {
	return types.NewEntityUID(types.EntityType(schema.Join(r.namespace, actionTypeName)), types.String(tool))
}

// GenerateRequest validates input, and output when given, and compiles them
// into the context of a request for the action of the called tool. Caller
// context attributes are added as is. The returned entity map holds entities
// plus the entities synthesized for object values.
func (r *RequestGenerator) GenerateRequest(principal, resource types.EntityUID, context types.RecordMap, entities types.EntityMap, input *description.Input, output *description.Output) (*cedar.Request, types.EntityMap, error) {
	entry, ok := r.tools[input.Name]
	if !ok {
		return nil, nil, &validation.Error{Kind: validation.ErrToolNotFound, Name: input.Name}
	}
	typedInput, err := validation.ValidateToolInput(entry.server, entry.tool, input)
	if err != nil {
		return nil, nil, err
	}
	var typedOutput *validation.TypedOutput
	if output != nil {
		if typedOutput, err = validation.ValidateToolOutput(entry.server, entry.tool, output); err != nil {
			return nil, nil, err
		}
	}

	toolNamespace := schema.Join(r.namespace, entry.tool.Name)
	scope := description.NewRegistry("").Push(r.namespace, entry.server.Defs).Push(toolNamespace, entry.tool.Defs)
	synthesized := newEntitySet()

	values := make(map[string]*schema.Value, len(context)+2)
	for key, value := range context {
		values[string(key)] = schema.OpaqueValue(value)
	}
	inputs, err := r.arguments(schema.Join(toolNamespace, "Input"), entry.tool.Inputs, typedInput.Args, scope, synthesized)
	if err != nil {
		return nil, nil, err
	}
	values["input"] = inputs
	if typedOutput != nil && r.config.IncludeOutputs {
		outputs, err := r.arguments(schema.Join(toolNamespace, "Output"), entry.tool.Outputs, typedOutput.Values, scope, synthesized)
		if err != nil {
			return nil, nil, err
		}
		values["output"] = outputs
	}

	if err := r.fragment.CheckAction(r.namespace, entry.tool.Name, principal, resource, values); err != nil {
		return nil, nil, err
	}
	for _, entity := range synthesized.entities {
		if err := r.fragment.CheckEntity(entity.entityType, entity.attributes, entity.tags); err != nil {
			return nil, nil, err
		}
	}

	record, err := schema.RecordOf(values)
	if err != nil {
		return nil, nil, err
	}
	extended, err := synthesized.merge(entities)
	if err != nil {
		return nil, nil, err
	}
	request := &cedar.Request{
		Principal: principal,
		Action:    r.Action(entry.tool.Name),
		Resource:  resource,
		Context:   record,
	}
	r.logger.Debug().
		Str("tool", entry.tool.Name).
		Int("entities", len(synthesized.entities)).
		Msg("generated request")
	return request, extended, nil
}

func (r *RequestGenerator) arguments(namespace string, params *description.Parameters, args []validation.TypedArgument, scope *description.Registry, synthesized *entitySet) (*schema.Value, error) {
	var defs []*description.PropertyTypeDef
	if params != nil {
		defs = params.Defs
	}
	scope = scope.Push(namespace, defs)
	attributes := make(map[string]*schema.Value, len(args))
	for _, arg := range args {
		value, err := r.value(namespace, arg.Name, arg.Value, scope, synthesized)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", arg.Name, err)
		}
		attributes[arg.Name] = value
	}
	return schema.RecordValue(attributes), nil
}

// value encodes v the way compileType encodes its type for the same
// namespace and type name.
func (r *RequestGenerator) value(namespace, tyName string, v *validation.TypedValue, scope *description.Registry, synthesized *entitySet) (*schema.Value, error) {
	switch v.Kind {
	case description.KindBool:
		return schema.BoolValue(v.Bool), nil
	case description.KindInteger:
		return schema.LongValue(v.Int), nil
	case description.KindString:
		return schema.StringValue(v.Text), nil
	case description.KindDecimal:
		return schema.ExtensionValue(schema.ExtensionDecimal, v.Text), nil
	case description.KindDatetime:
		literal, err := formatDatetime(v.Text)
		if err != nil {
			return nil, err
		}
		return schema.ExtensionValue(schema.ExtensionDatetime, literal), nil
	case description.KindDuration:
		literal, err := formatDuration(v.Text)
		if err != nil {
			return nil, err
		}
		return schema.ExtensionValue(schema.ExtensionDuration, literal), nil
	case description.KindIPAddr:
		literal, err := formatIPAddr(v.Text)
		if err != nil {
			return nil, err
		}
		return schema.ExtensionValue(schema.ExtensionIPAddr, literal), nil
	case description.KindFloat:
		if r.config.NumbersAsDecimal {
			return decimalValue(v.Float, v.Text)
		}
		return r.opaqueValue(floatType, strconv.FormatFloat(v.Float, 'f', -1, 64)), nil
	case description.KindNumber:
		if r.config.NumbersAsDecimal {
			f, err := strconv.ParseFloat(v.Text, 64)
			if err != nil {
				return nil, &MalformedDecimalError{Literal: v.Text}
			}
			return decimalValue(f, v.Text)
		}
		return r.opaqueValue(numberType, v.Text), nil
	case description.KindNull:
		return r.opaqueValue(nullType, "null"), nil
	case description.KindUnknown:
		return r.opaqueValue(unknownType, "unknown"), nil
	case description.KindEnum:
		return schema.EntityValue(flatten(r.config, r.namespace, schema.Join(namespace, tyName)), v.Text), nil
	case description.KindArray:
		elements := make([]*schema.Value, 0, len(v.Elements))
		for _, element := range v.Elements {
			value, err := r.value(namespace, tyName, element, scope, synthesized)
			if err != nil {
				return nil, err
			}
			elements = append(elements, value)
		}
		return schema.SetValue(elements...), nil
	case description.KindTuple:
		sub := schema.Join(namespace, tyName)
		attributes := make(map[string]*schema.Value, len(v.Elements))
		for i, element := range v.Elements {
			value, err := r.value(sub, tupleTypeName(i), element, scope, synthesized)
			if err != nil {
				return nil, err
			}
			attributes[tupleAttribute(i)] = value
		}
		return schema.RecordValue(attributes), nil
	case description.KindUnion:
		value, err := r.value(schema.Join(namespace, tyName), unionTypeName(v.Index), v.Inner, scope, synthesized)
		if err != nil {
			return nil, err
		}
		return schema.RecordValue(map[string]*schema.Value{unionAttribute(v.Index): value}), nil
	case description.KindObject:
		return r.objectValue(namespace, tyName, v, scope, synthesized)
	case description.KindRef:
		_, level, ok := scope.Lookup(v.Ref)
		if !ok {
			return nil, &UndefinedReferenceError{Name: v.Ref, Namespace: namespace}
		}
		return r.value(level.Label(), v.Ref, v.Inner, level, synthesized)
	}
	return nil, fmt.Errorf("unsupported value kind %v", v.Kind)
}

func (r *RequestGenerator) objectValue(namespace, tyName string, v *validation.TypedValue, scope *description.Registry, synthesized *entitySet) (*schema.Value, error) {
	sub := schema.Join(namespace, tyName)
	attributes := make(map[string]*schema.Value, len(v.Properties))
	for name, property := range v.Properties {
		value, err := r.value(sub, name, property, scope, synthesized)
		if err != nil {
			return nil, err
		}
		attributes[name] = value
	}
	if !v.Open && r.config.ObjectsAsRecords {
		return schema.RecordValue(attributes), nil
	}
	tags := make(map[string]*schema.Value, len(v.AdditionalProperties))
	for name, property := range v.AdditionalProperties {
		value, err := r.value(sub, tagTypeName(tyName), property, scope, synthesized)
		if err != nil {
			return nil, err
		}
		tags[name] = value
	}
	uid := schema.EntityValue(flatten(r.config, r.namespace, sub), "")
	if err := synthesized.add(uid, attributes, tags); err != nil {
		return nil, err
	}
	return uid, nil
}

func (r *RequestGenerator) opaqueValue(typeName, id string) *schema.Value {
	return schema.EntityValue(schema.Join(r.namespace, typeName), id)
}

// decimalValue rounds f to four fraction digits.
func decimalValue(f float64, text string) (*schema.Value, error) {
	literal := fmt.Sprintf("%.4f", f)
	if !validation.IsDecimal(literal) {
		return nil, &MalformedDecimalError{Literal: text}
	}
	return schema.ExtensionValue(schema.ExtensionDecimal, literal), nil
}

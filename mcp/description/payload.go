package description

import (
	"github.com/tidwall/gjson"
)

// Argument is one named raw JSON value of a tool call payload.
type Argument struct {
	Name  string
	Value gjson.Result
}

// Arguments is an ordered list of named raw values.
type Arguments []Argument

// Get returns the value of name.
func (a Arguments) Get(name string) (gjson.Result, bool) {
	for _, arg := range a {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	return gjson.Result{}, false
}

// Input is a tools/call request: {"params":{"name":...,"arguments":{...}}}.
// The older "tool"/"args" spellings are accepted as well.
type Input struct {
	Name string
	Args Arguments
}

// Output is a tools/call response carrying structured content:
// {"result":{"structuredContent":{...}}}.
type Output struct {
	Values Arguments
}

// ParseInput decodes a tools/call request payload.
func ParseInput(data []byte) (*Input, error) {
	doc, err := parseDocument(data, ContentToolInput)
	if err != nil {
		return nil, err
	}
	if !doc.IsObject() {
		return nil, unexpectedType(ContentToolInput, "object", doc)
	}
	params, ok := member(doc, "params")
	if !ok {
		return nil, missingAttribute(ContentToolInput, doc, "params")
	}
	if !params.IsObject() {
		return nil, unexpectedType(ContentToolInput, "object", params)
	}
	name, ok := member(params, "tool", "name")
	if !ok {
		return nil, missingAttribute(ContentToolInput, params, "tool", "name")
	}
	if name.Type != gjson.String {
		return nil, unexpectedType(ContentToolInput, "string", name)
	}
	ret := &Input{Name: name.Str}
	if args, ok := member(params, "args", "arguments"); ok && args.Type != gjson.Null {
		if ret.Args, err = arguments(args, ContentToolInput); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// NewInput builds an input from a tool name and a JSON object of arguments.
func NewInput(name string, args []byte) (*Input, error) {
	ret := &Input{Name: name}
	if len(args) == 0 {
		return ret, nil
	}
	doc, err := parseDocument(args, ContentToolInput)
	if err != nil {
		return nil, err
	}
	if ret.Args, err = arguments(doc, ContentToolInput); err != nil {
		return nil, err
	}
	return ret, nil
}

// ParseOutput decodes a tools/call response payload.
func ParseOutput(data []byte) (*Output, error) {
	doc, err := parseDocument(data, ContentToolOutput)
	if err != nil {
		return nil, err
	}
	if !doc.IsObject() {
		return nil, unexpectedType(ContentToolOutput, "object", doc)
	}
	result, ok := member(doc, "result")
	if !ok {
		return nil, missingAttribute(ContentToolOutput, doc, "result")
	}
	if !result.IsObject() {
		return nil, unexpectedType(ContentToolOutput, "object", result)
	}
	content, ok := member(result, "structuredContent")
	if !ok {
		return nil, missingAttribute(ContentToolOutput, result, "structuredContent")
	}
	values, err := arguments(content, ContentToolOutput)
	if err != nil {
		return nil, err
	}
	return &Output{Values: values}, nil
}

// NewOutput builds an output from a JSON object of structured content.
func NewOutput(content []byte) (*Output, error) {
	doc, err := parseDocument(content, ContentToolOutput)
	if err != nil {
		return nil, err
	}
	values, err := arguments(doc, ContentToolOutput)
	if err != nil {
		return nil, err
	}
	return &Output{Values: values}, nil
}

func arguments(doc gjson.Result, content ContentType) (Arguments, error) {
	if !doc.IsObject() {
		return nil, unexpectedType(content, "object", doc)
	}
	var ret Arguments
	doc.ForEach(func(key, value gjson.Result) bool {
		ret = append(ret, Argument{Name: key.Str, Value: value})
		return true
	})
	return ret, nil
}

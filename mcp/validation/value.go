package validation

import (
	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/description"
	"github.com/tidwall/gjson"
)

// TypedValue is a JSON value annotated with the description type it matched.
type TypedValue struct {
	Kind  description.Kind
	Bool  bool
	Int   int64
	Float float64
	// Text holds strings, enum variants, the raw text of numbers and the
	// literal text of decimals, datetimes, durations and IP addresses.
	Text string
	// Elements holds array and tuple members.
	Elements []*TypedValue
	// Index is the matched union alternative.
	Index int
	// Inner is the matched union alternative value or the referenced value.
	Inner *TypedValue
	// Ref is the name of the $defs entry a reference resolved to.
	Ref string
	// Properties holds declared object members, AdditionalProperties the rest.
	Properties           map[string]*TypedValue
	AdditionalProperties map[string]*TypedValue
	// Open reports whether the object type declared additionalProperties.
	Open bool
	// Raw is the untyped value accepted by an unknown type.
	Raw gjson.Result
}

// TypedArgument is a validated named parameter value.
type TypedArgument struct {
	Name  string
	Value *TypedValue
}

// TypedInput is a validated tools/call request.
type TypedInput struct {
	Name string
	Args []TypedArgument
}

// TypedOutput is a validated tools/call response.
type TypedOutput struct {
	Name   string
	Values []TypedArgument
}

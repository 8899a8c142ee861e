package validation

import (
	"errors"
	"testing"

	"github.com/cedar-policy/cedar-for-agents-sub000/mcp/description"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const toolsJSON = `{
  "result": {
    "$defs": {
      "Id": {"type": "string"},
      "Node": {"type": "object", "properties": {"next": {"$ref": "#/$defs/Node"}, "value": {"type": "integer"}}, "required": ["value"]}
    },
    "tools": [
      {
        "name": "search",
        "inputSchema": {
          "type": "object",
          "$defs": {"Id": {"type": "integer"}},
          "properties": {
            "query": {"type": "string"},
            "limit": {"type": "integer"},
            "owner": {"$ref": "#/$defs/Id"},
            "labels": {"type": "object", "additionalProperties": {"type": "string"}},
            "pair": {"type": ["string", "integer"]},
            "choice": {"anyOf": [{"type": "integer"}, {"type": "string"}, {"type": "string", "enum": ["x"]}]},
            "list": {"$ref": "#/$defs/Node"}
          },
          "required": ["query"]
        },
        "outputSchema": {"properties": {"count": {"type": "integer"}}, "required": ["count"]}
      },
      {
        "name": "plain",
        "inputSchema": {"properties": {"owner": {"$ref": "#/$defs/Id"}}}
      }
    ]
  }
}`

func loadServer(t *testing.T) *description.ServerDescription {
	t.Helper()
	server, err := description.ParseServerDescription([]byte(toolsJSON))
	require.NoError(t, err)
	return server
}

func TestValidateInput(t *testing.T) {
	server := loadServer(t)
	testCases := []struct {
		name    string
		tool    string
		args    string
		errKind ErrorKind
		check   func(t *testing.T, input *TypedInput)
	}{
		{
			name: "required only",
			tool: "search",
			args: `{"query":"cedar"}`,
			check: func(t *testing.T, input *TypedInput) {
				require.Len(t, input.Args, 1)
				assert.EqualValues(t, "cedar", input.Args[0].Value.Text)
			},
		},
		{name: "missing required", tool: "search", args: `{"limit":1}`, errKind: ErrMissingRequiredProperty},
		{name: "unexpected top level key", tool: "search", args: `{"query":"a","extra":1}`, errKind: ErrUnexpectedProperty},
		{name: "integer from float text", tool: "search", args: `{"query":"a","limit":1.5}`, errKind: ErrInvalidIntegerLiteral},
		{name: "wrong json type", tool: "search", args: `{"query":1}`, errKind: ErrInvalidValueForType},
		{
			name: "tool def shadows server def",
			tool: "search",
			args: `{"query":"a","owner":7}`,
			check: func(t *testing.T, input *TypedInput) {
				owner := input.Args[1].Value
				assert.EqualValues(t, description.KindRef, owner.Kind)
				assert.EqualValues(t, "Id", owner.Ref)
				assert.EqualValues(t, int64(7), owner.Inner.Int)
			},
		},
		{
			name: "server def for other tool",
			tool: "plain",
			args: `{"owner":"alice"}`,
			check: func(t *testing.T, input *TypedInput) {
				assert.EqualValues(t, "alice", input.Args[0].Value.Inner.Text)
			},
		},
		{name: "server def type enforced", tool: "plain", args: `{"owner":7}`, errKind: ErrInvalidValueForType},
		{
			name: "open object",
			tool: "search",
			args: `{"query":"a","labels":{"env":"prod"}}`,
			check: func(t *testing.T, input *TypedInput) {
				labels := input.Args[1].Value
				assert.True(t, labels.Open)
				assert.Empty(t, labels.Properties)
				assert.EqualValues(t, "prod", labels.AdditionalProperties["env"].Text)
			},
		},
		{name: "open object value type", tool: "search", args: `{"query":"a","labels":{"env":1}}`, errKind: ErrInvalidValueForType},
		{name: "tuple arity", tool: "search", args: `{"query":"a","pair":["x"]}`, errKind: ErrWrongTupleSize},
		{
			name: "union lowest index",
			tool: "search",
			args: `{"query":"a","choice":"x"}`,
			check: func(t *testing.T, input *TypedInput) {
				assert.EqualValues(t, 1, input.Args[1].Value.Index)
			},
		},
		{name: "union without match", tool: "search", args: `{"query":"a","choice":true}`, errKind: ErrInvalidValueForUnionType},
		{
			name: "recursive object",
			tool: "search",
			args: `{"query":"a","list":{"value":1,"next":{"value":2}}}`,
			check: func(t *testing.T, input *TypedInput) {
				list := input.Args[1].Value.Inner
				assert.False(t, list.Open)
				assert.EqualValues(t, int64(2), list.Properties["next"].Inner.Properties["value"].Int)
			},
		},
		{name: "recursive object closed", tool: "search", args: `{"query":"a","list":{"value":1,"other":2}}`, errKind: ErrUnexpectedProperty},
		{name: "unknown tool", tool: "missing", args: `{}`, errKind: ErrToolNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input, err := description.NewInput(tc.tool, []byte(tc.args))
			require.NoError(t, err)
			actual, err := ValidateInput(server, input)
			if tc.errKind != 0 {
				var validationErr *Error
				require.True(t, errors.As(err, &validationErr), "expected *Error, got %v", err)
				assert.EqualValues(t, tc.errKind, validationErr.Kind)
				return
			}
			require.NoError(t, err)
			tc.check(t, actual)
		})
	}
}

func TestValidateToolInput_MismatchedNames(t *testing.T) {
	server := loadServer(t)
	tool, _ := server.Tool("search")
	_, err := ValidateToolInput(server, tool, &description.Input{Name: "plain"})
	var validationErr *Error
	require.True(t, errors.As(err, &validationErr))
	assert.EqualValues(t, ErrMismatchedNames, validationErr.Kind)
	assert.EqualValues(t, "search", validationErr.Expected)
	assert.EqualValues(t, "plain", validationErr.Found)
}

func TestValidateOutput(t *testing.T) {
	server := loadServer(t)
	output, err := description.NewOutput([]byte(`{"count":3}`))
	require.NoError(t, err)
	typed, err := ValidateOutput(server, "search", output)
	require.NoError(t, err)
	assert.EqualValues(t, int64(3), typed.Values[0].Value.Int)

	output, err = description.NewOutput([]byte(`{}`))
	require.NoError(t, err)
	_, err = ValidateOutput(server, "search", output)
	assert.Error(t, err)
}

func TestValidateValue(t *testing.T) {
	registry := description.NewRegistry("").Push("", []*description.PropertyTypeDef{
		{Name: "A", Type: description.Union(description.Ref("B"))},
		{Name: "B", Type: description.Ref("A")},
	})
	testCases := []struct {
		name    string
		typ     *description.PropertyType
		value   string
		errKind ErrorKind
	}{
		{name: "float", typ: description.Float(), value: `1.25`},
		{name: "float overflow", typ: description.Float(), value: `1e400`, errKind: ErrInvalidFloatLiteral},
		{name: "number keeps text", typ: description.Number(), value: `12345678901234567890`},
		{name: "decimal", typ: description.Decimal(), value: `"1.25"`},
		{name: "bad decimal", typ: description.Decimal(), value: `"1.23456"`, errKind: ErrInvalidDecimalLiteral},
		{name: "datetime", typ: description.Datetime(), value: `"2024-01-01T00:00:00Z"`},
		{name: "bad datetime", typ: description.Datetime(), value: `"soon"`, errKind: ErrInvalidDatetimeLiteral},
		{name: "duration", typ: description.Duration(), value: `"PT1H"`},
		{name: "bad duration", typ: description.Duration(), value: `"1h"`, errKind: ErrInvalidDurationLiteral},
		{name: "overflowing duration", typ: description.Duration(), value: `"P50539024859478224Y"`, errKind: ErrInvalidDurationLiteral},
		{name: "ip", typ: description.IPAddr(), value: `"::1"`},
		{name: "bad ip", typ: description.IPAddr(), value: `"::g"`, errKind: ErrInvalidIPAddrLiteral},
		{name: "null", typ: description.Null(), value: `null`},
		{name: "not null", typ: description.Null(), value: `0`, errKind: ErrInvalidValueForType},
		{name: "enum", typ: description.Enum("a", "b"), value: `"b"`},
		{name: "foreign enum value", typ: description.Enum("a", "b"), value: `"c"`, errKind: ErrInvalidEnumVariant},
		{name: "array", typ: description.Array(description.Bool()), value: `[true,false]`},
		{name: "array element", typ: description.Array(description.Bool()), value: `[true,1]`, errKind: ErrInvalidValueForType},
		{name: "unknown", typ: description.Unknown(), value: `{"any":[1]}`},
		{name: "undefined ref", typ: description.Ref("Missing"), value: `1`, errKind: ErrUnexpectedTypeName},
		{name: "alias loop through union", typ: description.Ref("A"), value: `1`, errKind: ErrInvalidValueForUnionType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := ValidateValue(tc.typ, gjson.Parse(tc.value), registry)
			if tc.errKind != 0 {
				var validationErr *Error
				require.True(t, errors.As(err, &validationErr), "expected *Error, got %v", err)
				assert.EqualValues(t, tc.errKind, validationErr.Kind)
				return
			}
			require.NoError(t, err)
			assert.EqualValues(t, tc.typ.Kind, actual.Kind)
		})
	}
}

func TestTupleArity(t *testing.T) {
	tuple := description.Tuple(description.Integer(), description.Integer(), description.Integer())
	for _, value := range []string{`[]`, `[1]`, `[1,2]`, `[1,2,3]`, `[1,2,3,4]`} {
		parsed := gjson.Parse(value)
		_, err := ValidateValue(tuple, parsed, description.NewRegistry(""))
		found := len(parsed.Array())
		if found == 3 {
			assert.NoError(t, err)
			continue
		}
		var validationErr *Error
		require.True(t, errors.As(err, &validationErr))
		assert.EqualValues(t, 3, validationErr.ExpectedSize)
		assert.EqualValues(t, found, validationErr.FoundSize)
	}
}

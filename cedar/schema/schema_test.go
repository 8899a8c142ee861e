package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/cedar-policy/cedar-go/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSchema = `@mcp_principal("User")
@mcp_resource("McpServer")
namespace Acme {
  type Address = {
    "city": String,
    "zip"?: Long
  };

  entity Color enum ["red", "green"];

  entity Group;

  entity McpServer;

  entity User in [Group] = {
    "address": Address,
    "name": String
  } tags Set<String>;

  action "call_tool" appliesTo {
    principal: [User],
    resource: [McpServer],
    context: {
      "color": Color,
      "created"?: __cedar::datetime,
      "labels": Set<String>
    }
  };
}
`

func sample(t *testing.T) *Fragment {
	f, err := ParseCedar([]byte(sampleSchema))
	require.NoError(t, err)
	return f
}

func TestNames(t *testing.T) {
	assert.Equal(t, "A::B::c", Join("A", "", "B", "c"))
	assert.Equal(t, "c", Join("", "c"))
	ns, base := Split("A::B::c")
	assert.Equal(t, "A::B", ns)
	assert.Equal(t, "c", base)
	ns, base = Split("c")
	assert.Equal(t, "", ns)
	assert.Equal(t, "c", base)
	assert.Equal(t, "c", Unqualify("A::B", "A::B::c"))
	assert.Equal(t, "A::B::C::d", Unqualify("A::B", "A::B::C::d"))
	assert.True(t, IsIdentifier("get_task_2"))
	assert.False(t, IsIdentifier("2fast"))
	assert.False(t, IsIdentifier("has-dash"))
	assert.True(t, IsReserved("in"))
	assert.True(t, IsReserved("__cedar"))
	assert.False(t, IsReserved("Root"))
}

func TestParseCedar(t *testing.T) {
	f := sample(t)
	require.Equal(t, []string{"Acme"}, f.NamespaceNames())
	ns := f.Namespace("Acme")
	assert.Equal(t, Annotations{"mcp_principal": "User", "mcp_resource": "McpServer"}, ns.Annotations)
	assert.Equal(t, []string{"red", "green"}, ns.EntityTypes["Color"].Enum)
	assert.Equal(t, []string{"Group"}, ns.EntityTypes["User"].MemberOfTypes)
	assert.Equal(t, Set(String()), ns.EntityTypes["User"].Tags)
	address := ns.CommonTypes["Address"].Type
	require.Equal(t, TypeRecord, address.Kind)
	assert.True(t, address.Attributes["city"].Required)
	assert.False(t, address.Attributes["zip"].Required)
	action := ns.Actions["call_tool"]
	require.NotNil(t, action.AppliesTo)
	assert.Equal(t, []string{"User"}, action.AppliesTo.PrincipalTypes)
	assert.Equal(t, Extension(ExtensionDatetime), action.AppliesTo.Context.Attributes["created"].Type)
	require.NoError(t, f.Validate())
}

func TestParseCedar_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "unterminated namespace", input: `namespace A { entity B;`},
		{name: "missing semicolon", input: `entity A`},
		{name: "duplicate entity", input: `entity A; entity A;`},
		{name: "empty enum", input: `entity A enum [];`},
		{name: "bad character", input: `entity A $;`},
		{name: "unterminated string", input: `action "a`},
		{name: "unexpected appliesTo key", input: `entity A; action "a" appliesTo { owner: [A] };`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCedar([]byte(tc.input))
			var syntaxErr *SyntaxError
			assert.True(t, errors.As(err, &syntaxErr), "%v", err)
		})
	}
}

func TestMarshalCedar_RoundTrip(t *testing.T) {
	f := sample(t)
	printed := f.MarshalCedar()
	reparsed, err := ParseCedar(printed)
	require.NoError(t, err)
	assert.Equal(t, string(printed), string(reparsed.MarshalCedar()))
	assert.Equal(t, string(printed), string(f.Clone().MarshalCedar()))
}

func TestMarshalJSON_RoundTrip(t *testing.T) {
	f := sample(t)
	data, err := json.Marshal(f)
	require.NoError(t, err)

	var decoded Fragment
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, string(f.MarshalCedar()), string(decoded.MarshalCedar()))

	var doc map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc["Acme"], "entityTypes")
	assert.Contains(t, doc["Acme"], "actions")
	assert.Contains(t, doc["Acme"], "commonTypes")
}

func TestFragment_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		reason string
	}{
		{name: "undeclared attribute type", input: `entity A = {"b": Missing};`, reason: "undeclared type"},
		{name: "undeclared parent", input: `entity A in [Missing];`, reason: "undeclared entity type"},
		{name: "undeclared principal", input: `entity A; action "x" appliesTo { principal: [Missing], resource: [A] };`, reason: "undeclared entity type"},
		{name: "undeclared action group", input: `action "x" in ["missing"];`, reason: "undeclared action"},
		{name: "cyclic common type", input: `type A = {"b": B}; type B = Set<A>;`, reason: "cyclic common type"},
		{name: "qualified reference into other namespace", input: `namespace N { entity E = {"f": O::Missing}; } namespace O {}`, reason: "undeclared type"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := ParseCedar([]byte(tc.input))
			require.NoError(t, err)
			err = f.Validate()
			var resolutionErr *ResolutionError
			require.True(t, errors.As(err, &resolutionErr), "%v", err)
			assert.Equal(t, tc.reason, resolutionErr.Reason)
		})
	}
}

func TestFragment_ValidateResolvesGlobalAndQualifiedNames(t *testing.T) {
	f, err := ParseCedar([]byte(`
entity Shared;
namespace N {
  type T = {"s": Shared, "q": N::Local, "b": __cedar::Long};
  entity Local;
  action "group";
  action "x" in ["group", N::Action::"group"] appliesTo { principal: [Shared], resource: [Local], context: T };
}
`))
	require.NoError(t, err)
	require.NoError(t, f.Validate())
	name, ok := f.EntityTypeName("N", "Shared")
	assert.True(t, ok)
	assert.Equal(t, "Shared", name)
	name, ok = f.EntityTypeName("N", "Local")
	assert.True(t, ok)
	assert.Equal(t, "N::Local", name)
}

func TestFragment_CheckValue(t *testing.T) {
	f := sample(t)
	address := map[string]*Value{"city": StringValue("Oslo")}
	testCases := []struct {
		name    string
		t       *Type
		value   *Value
		wantErr bool
	}{
		{name: "bool", t: Boolean(), value: BoolValue(true)},
		{name: "bool mismatch", t: Boolean(), value: LongValue(1), wantErr: true},
		{name: "common record", t: EntityOrCommon("Address"), value: RecordValue(address)},
		{name: "missing required", t: EntityOrCommon("Address"), value: RecordValue(nil), wantErr: true},
		{name: "unexpected attribute", t: EntityOrCommon("Address"), value: RecordValue(map[string]*Value{"city": StringValue("x"), "street": StringValue("y")}), wantErr: true},
		{name: "enum member", t: EntityOrCommon("Color"), value: EntityValue("Acme::Color", "red")},
		{name: "enum non member", t: EntityOrCommon("Color"), value: EntityValue("Acme::Color", "blue"), wantErr: true},
		{name: "entity wrong type", t: Entity("Group"), value: EntityValue("Acme::User", "u"), wantErr: true},
		{name: "set", t: Set(Long()), value: SetValue(LongValue(1), LongValue(2))},
		{name: "set element mismatch", t: Set(Long()), value: SetValue(StringValue("x")), wantErr: true},
		{name: "extension", t: Extension(ExtensionDecimal), value: ExtensionValue(ExtensionDecimal, "1.5000")},
		{name: "extension mismatch", t: Extension(ExtensionDecimal), value: ExtensionValue(ExtensionIPAddr, "10.0.0.1"), wantErr: true},
		{name: "open record", t: Record(nil, true), value: RecordValue(address)},
		{name: "opaque string", t: String(), value: OpaqueValue(types.String("x"))},
		{name: "opaque mismatch", t: Long(), value: OpaqueValue(types.String("x")), wantErr: true},
		{name: "opaque entity", t: EntityOrCommon("Group"), value: OpaqueValue(types.NewEntityUID("Acme::Group", "g"))},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.CheckValue("Acme", tc.t, tc.value)
			if tc.wantErr {
				var typeErr *TypeError
				assert.True(t, errors.As(err, &typeErr), "%v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFragment_CheckEntityAndAction(t *testing.T) {
	f := sample(t)
	attrs := map[string]*Value{
		"name":    StringValue("alice"),
		"address": RecordValue(map[string]*Value{"city": StringValue("Oslo")}),
	}
	require.NoError(t, f.CheckEntity("Acme::User", attrs, map[string]*Value{"team": SetValue(StringValue("a"))}))
	assert.Error(t, f.CheckEntity("Acme::User", map[string]*Value{"name": StringValue("alice")}, nil))
	assert.Error(t, f.CheckEntity("Acme::Group", nil, map[string]*Value{"t": StringValue("x")}))
	assert.Error(t, f.CheckEntity("Acme::Missing", nil, nil))

	user := types.NewEntityUID("Acme::User", "alice")
	server := types.NewEntityUID("Acme::McpServer", "srv")
	context := map[string]*Value{
		"color":  EntityValue("Acme::Color", "green"),
		"labels": SetValue(),
	}
	require.NoError(t, f.CheckAction("Acme", "call_tool", user, server, context))
	assert.Error(t, f.CheckAction("Acme", "call_tool", server, server, context))
	assert.Error(t, f.CheckAction("Acme", "call_tool", user, server, map[string]*Value{"labels": SetValue()}))
	assert.Error(t, f.CheckAction("Acme", "missing", user, server, context))
}

func TestValue_Cedar(t *testing.T) {
	v := RecordValue(map[string]*Value{
		"n":    LongValue(3),
		"tags": SetValue(StringValue("a"), StringValue("a")),
		"at":   ExtensionValue(ExtensionDatetime, "2024-01-01T00:00:00Z"),
		"ip":   ExtensionValue(ExtensionIPAddr, "10.0.0.0/8"),
		"who":  EntityValue("Acme::User", "alice"),
	})
	converted, err := v.Cedar()
	require.NoError(t, err)
	record, ok := converted.(types.Record)
	require.True(t, ok)
	assert.Equal(t, types.Long(3), record.Map()["n"])
	assert.Equal(t, types.NewEntityUID("Acme::User", "alice"), record.Map()["who"])

	_, err = ExtensionValue(ExtensionDecimal, "not a decimal").Cedar()
	assert.Error(t, err)

	assert.True(t, v.Equal(v))
	assert.False(t, LongValue(1).Equal(LongValue(2)))
	assert.False(t, SetValue(LongValue(1)).Equal(SetValue()))
}

func TestParseEntityUID(t *testing.T) {
	testCases := []struct {
		input    string
		expected types.EntityUID
		valid    bool
	}{
		{input: `User::"alice"`, expected: types.NewEntityUID("User", "alice"), valid: true},
		{input: `Acme::User::"a\"b"`, expected: types.NewEntityUID("Acme::User", `a"b`), valid: true},
		{input: `Acme::Item::""`, expected: types.NewEntityUID("Acme::Item", ""), valid: true},
		{input: `User::"id::x"`, expected: types.NewEntityUID("User", "id::x"), valid: true},
		{input: `User`},
		{input: `"alice"`},
		{input: `1User::"alice"`},
		{input: `User::"alice" extra`},
		{input: `User::"unterminated`},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			actual, err := ParseEntityUID(tc.input)
			if !tc.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

// Package description holds the intermediate representation of MCP tool
// descriptions: property types, properties, parameters, tools and servers,
// together with the $defs registry and a JSON reader that understands the
// shapes MCP servers return from tools/list.
//
// The representation is immutable once decoded and is shared by the Cedar
// schema compiler, the validator and the request compiler.
package description

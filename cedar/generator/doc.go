// Package generator compiles MCP tool descriptions into a Cedar schema and
// compiles tool calls into Cedar authorization requests that type check
// against that schema.
//
// A Generator starts from a schema stub declaring a single namespace. Entity
// types annotated with @mcp_principal and @mcp_resource become the principal
// and resource types of every generated action, types annotated with
// @mcp_context("key") become context attributes and actions annotated with
// @mcp_action become the action group of every generated action.
package generator

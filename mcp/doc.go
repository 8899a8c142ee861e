// Package mcp hosts the schema service. Stubs, tool descriptions, policies and
// entities are read through afs or listed from remote MCP servers; the service
// compiles them into Cedar schemas and authorizes tool calls with cedar-go.
package mcp

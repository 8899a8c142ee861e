// Package conv holds the value coercions shared by the action service and the
// MCP tool conversion: typed input decoding and optional field helpers.
package conv

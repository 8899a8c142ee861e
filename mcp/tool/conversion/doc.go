// Package conversion turns MCP protocol tool values, as returned by
// tools/list, into tool descriptions the Cedar schema compiler understands.
package conversion

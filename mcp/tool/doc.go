// Package tool lists the tools of a live MCP server, following tools/list
// pagination, and names the workflow action methods exposed by this module.
package tool

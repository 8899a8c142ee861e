// Package cmd implements the cedar-mcp-schema command-line interface. Each
// file registers one sub-command (generate, authorize, request, list-tools,
// list-actions, action, run); configuration loading, logging and the service
// singletons live in shared.go and cli.go.
package cmd

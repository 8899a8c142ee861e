// Package action exposes schema generation and tool call authorization as a
// Fluxor action service, so workflows can compile schemas and gate tool
// calls without going through the CLI.
package action

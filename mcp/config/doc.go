// Package config defines the YAML configuration model read by the CLI and
// the schema service: locations of the schema stub, tool descriptions,
// policies and entities, the generator options and the MCP servers tools can
// be listed from.
package config

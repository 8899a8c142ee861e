// Package schema models Cedar schema fragments. It encodes fragments in the
// Cedar JSON and human readable formats, parses the human readable format,
// resolves type names and type checks values against declarations.
package schema

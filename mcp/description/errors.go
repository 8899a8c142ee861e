package description

import (
	"fmt"
	"strings"
)

// ErrorKind classifies decoding failures.
type ErrorKind int

const (
	// ErrParse reports malformed JSON.
	ErrParse ErrorKind = iota + 1
	// ErrUnexpectedType reports a JSON value of the wrong type.
	ErrUnexpectedType
	// ErrMissingAttribute reports a required key that is absent.
	ErrMissingAttribute
	// ErrUnexpectedValue reports a well typed but unsupported value.
	ErrUnexpectedValue
	// ErrTypeDefinitionCycle reports $defs that only alias each other.
	ErrTypeDefinitionCycle
)

// ContentType names what was being decoded when an error occurred.
type ContentType string

const (
	ContentServerDescription ContentType = "server description"
	ContentToolDescription   ContentType = "tool description"
	ContentToolParameters    ContentType = "tool parameters"
	ContentProperty          ContentType = "property"
	ContentPropertyType      ContentType = "property type"
	ContentToolInput         ContentType = "tool input request"
	ContentToolOutput        ContentType = "tool output response"
)

// Error is a located decoding error. Offset is the byte offset of the
// offending value within the decoded document.
type Error struct {
	Kind     ErrorKind
	Content  ContentType
	Offset   int
	Expected string
	Found    string
	// Attribute and Aliases describe a missing key; Keys lists the keys that were present.
	Attribute string
	Aliases   []string
	Keys      []string
	Cycle     []string
	Message   string
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrParse:
		return fmt.Sprintf("failed to parse %s: %s", e.Content, e.Message)
	case ErrUnexpectedType:
		return fmt.Sprintf("failed to parse %s at offset %d: expected %s, found %s", e.Content, e.Offset, e.Expected, e.Found)
	case ErrMissingAttribute:
		names := append([]string{e.Attribute}, e.Aliases...)
		return fmt.Sprintf("failed to parse %s at offset %d: missing attribute %s (found keys: %s)",
			e.Content, e.Offset, quoteAll(names, " or "), quoteAll(e.Keys, ", "))
	case ErrUnexpectedValue:
		return fmt.Sprintf("failed to parse %s at offset %d: %s", e.Content, e.Offset, e.Message)
	case ErrTypeDefinitionCycle:
		return fmt.Sprintf("type definitions are not well founded: %s", strings.Join(e.Cycle, " -> "))
	}
	return fmt.Sprintf("failed to parse %s", e.Content)
}

func quoteAll(values []string, sep string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, sep)
}

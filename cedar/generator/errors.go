package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongNumberOfNamespaces is returned when the schema stub does not declare exactly one namespace.
	ErrWrongNumberOfNamespaces = errors.New("expected schema stub with a single namespace")
	// ErrGlobalNamespaceUsed is returned when the schema stub declares types in the global namespace.
	ErrGlobalNamespaceUsed = errors.New("schema stub must not use the global namespace")
	// ErrSchemaResolution wraps failures to resolve the generated schema.
	ErrSchemaResolution = errors.New("generated schema does not resolve")
)

// InvalidNameError reports a tool, property or definition name that is not a Cedar identifier.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("%q is not a valid Cedar identifier", e.Name)
}

// ReservedNameError reports a name that collides with a Cedar reserved word.
type ReservedNameError struct {
	Name string
}

func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("%q is a reserved Cedar name", e.Name)
}

// ConflictingNameError reports a generated declaration whose name is already taken.
type ConflictingNameError struct {
	Name string
}

func (e *ConflictingNameError) Error() string {
	return fmt.Sprintf("conflicting type definitions for %q between tool descriptions and schema stub", e.Name)
}

// UndefinedReferenceError reports a $ref with no visible definition.
type UndefinedReferenceError struct {
	Name      string
	Namespace string
}

func (e *UndefinedReferenceError) Error() string {
	return fmt.Sprintf("undefined reference type %q in %q or any containing namespace", e.Name, e.Namespace)
}

// EmptyEnumError reports an enum type without variants.
type EmptyEnumError struct {
	Name string
}

func (e *EmptyEnumError) Error() string {
	return fmt.Sprintf("empty enum type: %s", e.Name)
}

// MalformedDecimalError reports a number that cannot be encoded as a Cedar decimal.
type MalformedDecimalError struct {
	Literal string
}

func (e *MalformedDecimalError) Error() string {
	return fmt.Sprintf("cannot convert number %s to decimal literal", e.Literal)
}

// DuplicateEntityError reports two different entities sharing a uid.
type DuplicateEntityError struct {
	UID string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("duplicate entity %s", e.UID)
}

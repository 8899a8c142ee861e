package validation

import "fmt"

// ErrorKind classifies validation failures.
type ErrorKind int

const (
	ErrMismatchedNames ErrorKind = iota + 1
	ErrToolNotFound
	ErrMissingRequiredProperty
	ErrUnexpectedProperty
	ErrInvalidIntegerLiteral
	ErrInvalidFloatLiteral
	ErrInvalidDecimalLiteral
	ErrInvalidDatetimeLiteral
	ErrInvalidDurationLiteral
	ErrInvalidIPAddrLiteral
	ErrInvalidEnumVariant
	ErrWrongTupleSize
	ErrInvalidValueForUnionType
	ErrUnexpectedTypeName
	ErrCyclicTypeReference
	ErrInvalidValueForType
)

// Error describes why a value does not conform to its description.
type Error struct {
	Kind ErrorKind
	// Name is a tool, property or type definition name.
	Name string
	// Literal is the offending value text.
	Literal string
	// Expected and Found describe a type or name mismatch.
	Expected string
	Found    string
	// ExpectedSize and FoundSize describe a tuple arity mismatch.
	ExpectedSize int
	FoundSize    int
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrMismatchedNames:
		return fmt.Sprintf("tool name mismatch: expected %q, found %q", e.Expected, e.Found)
	case ErrToolNotFound:
		return fmt.Sprintf("tool %q not found", e.Name)
	case ErrMissingRequiredProperty:
		return fmt.Sprintf("missing required property %q", e.Name)
	case ErrUnexpectedProperty:
		return fmt.Sprintf("unexpected property %q", e.Name)
	case ErrInvalidIntegerLiteral:
		return fmt.Sprintf("invalid integer literal %s", e.Literal)
	case ErrInvalidFloatLiteral:
		return fmt.Sprintf("invalid float literal %s", e.Literal)
	case ErrInvalidDecimalLiteral:
		return fmt.Sprintf("invalid decimal literal %q", e.Literal)
	case ErrInvalidDatetimeLiteral:
		return fmt.Sprintf("invalid datetime literal %q", e.Literal)
	case ErrInvalidDurationLiteral:
		return fmt.Sprintf("invalid duration literal %q", e.Literal)
	case ErrInvalidIPAddrLiteral:
		return fmt.Sprintf("invalid IP address literal %q", e.Literal)
	case ErrInvalidEnumVariant:
		return fmt.Sprintf("invalid enum variant %q", e.Literal)
	case ErrWrongTupleSize:
		return fmt.Sprintf("wrong tuple size: expected %d, found %d", e.ExpectedSize, e.FoundSize)
	case ErrInvalidValueForUnionType:
		return fmt.Sprintf("value %s matches no union alternative", e.Literal)
	case ErrUnexpectedTypeName:
		return fmt.Sprintf("undefined type %q", e.Name)
	case ErrCyclicTypeReference:
		return fmt.Sprintf("type %q refers to itself", e.Name)
	case ErrInvalidValueForType:
		return fmt.Sprintf("invalid value %s for type %s", e.Literal, e.Expected)
	}
	return "invalid value"
}

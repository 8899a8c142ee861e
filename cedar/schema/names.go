package schema

import (
	"fmt"
	"strings"

	"github.com/cedar-policy/cedar-go/types"
)

// Separator joins namespace path segments.
const Separator = "::"

var reserved = map[string]bool{
	"true":    true,
	"false":   true,
	"if":      true,
	"then":    true,
	"else":    true,
	"in":      true,
	"is":      true,
	"like":    true,
	"has":     true,
	"__cedar": true,
}

// Join joins non empty name segments with "::".
func Join(parts ...string) string {
	var nonEmpty []string
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, Separator)
}

// Split returns the namespace and basename of a qualified name.
func Split(name string) (string, string) {
	idx := strings.LastIndex(name, Separator)
	if idx == -1 {
		return "", name
	}
	return name[:idx], name[idx+len(Separator):]
}

// Unqualify strips namespace from name when name lives directly in it.
func Unqualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	prefix := namespace + Separator
	if strings.HasPrefix(name, prefix) && !strings.Contains(name[len(prefix):], Separator) {
		return name[len(prefix):]
	}
	return name
}

// IsIdentifier reports whether s matches [_a-zA-Z][_a-zA-Z0-9]*.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// IsReserved reports whether s is a Cedar reserved word.
func IsReserved(s string) bool {
	return reserved[s]
}

// ParseEntityUID parses an entity uid written as Type::"id", where Type is a
// possibly qualified entity type name.
func ParseEntityUID(s string) (types.EntityUID, error) {
	idx := strings.Index(s, Separator+`"`)
	if idx == -1 {
		return types.EntityUID{}, fmt.Errorf("invalid entity uid %q: expected Type::\"id\"", s)
	}
	entityType := s[:idx]
	for _, segment := range strings.Split(entityType, Separator) {
		if !IsIdentifier(segment) {
			return types.EntityUID{}, fmt.Errorf("invalid entity uid %q: invalid type name %q", s, entityType)
		}
	}
	id, end, err := unquote(s, idx+len(Separator))
	if err != nil {
		return types.EntityUID{}, fmt.Errorf("invalid entity uid %q: %w", s, err)
	}
	if end != len(s) {
		return types.EntityUID{}, fmt.Errorf("invalid entity uid %q: trailing characters", s)
	}
	return types.NewEntityUID(types.EntityType(entityType), types.String(id)), nil
}

package matcher

import "strings"

// Match reports whether a tool name satisfies pattern: "*" matches every
// name, an empty pattern matches nothing and anything else is a prefix.
func Match(pattern, name string) bool {
	if pattern == "*" {
		return true
	}
	if pattern == "" {
		return false
	}
	return strings.HasPrefix(name, pattern)
}

// MatchAny reports whether name satisfies at least one pattern. No patterns
// means no restriction.
func MatchAny(patterns []string, name string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		if Match(pattern, name) {
			return true
		}
	}
	return false
}

// Filter returns a predicate accepting the names MatchAny accepts.
func Filter(patterns []string) func(name string) bool {
	return func(name string) bool {
		return MatchAny(patterns, name)
	}
}

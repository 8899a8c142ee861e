package tool

import "strings"

// Name identifies a workflow action method as "<service>-<method>", with
// the slashes of the service name replaced by underscores.
type Name string

// NewName builds the name of method on service.
func NewName(service, method string) Name {
	return Name(strings.ReplaceAll(service, "/", "_") + "-" + method)
}

// Service returns the service part with its slashes restored.
func (n Name) Service() string {
	s := string(n)
	if idx := strings.LastIndex(s, "-"); idx != -1 {
		return strings.ReplaceAll(s[:idx], "_", "/")
	}
	return s
}

// Method returns the method part, or "" when the name has none.
func (n Name) Method() string {
	s := string(n)
	if idx := strings.LastIndex(s, "-"); idx != -1 {
		return s[idx+1:]
	}
	return ""
}

func (n Name) String() string {
	return string(n)
}

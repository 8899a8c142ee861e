package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	testCases := []struct {
		service string
		method  string
		name    string
	}{
		{service: "cedar/schema", method: "generate", name: "cedar_schema-generate"},
		{service: "cedar/schema", method: "authorize", name: "cedar_schema-authorize"},
		{service: "printer", method: "print", name: "printer-print"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			name := NewName(tc.service, tc.method)
			assert.Equal(t, tc.name, name.String())
			assert.Equal(t, tc.service, name.Service())
			assert.Equal(t, tc.method, name.Method())
		})
	}

	assert.Equal(t, "", Name("plain").Method())
	assert.Equal(t, "plain", Name("plain").Service())
}

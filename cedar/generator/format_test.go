package generator

import (
	"testing"

	"github.com/cedar-policy/cedar-go/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDatetime(t *testing.T) {
	testCases := []struct {
		literal  string
		expected string
	}{
		{literal: "2024-06-01", expected: "2024-06-01"},
		{literal: "2024-06-01T10:00:00Z", expected: "2024-06-01T10:00:00Z"},
		{literal: "2024-06-01T10:00:00.123Z", expected: "2024-06-01T10:00:00.123Z"},
		{literal: "2024-06-01T10:00:00.123456Z", expected: "2024-06-01T10:00:00.123Z"},
		{literal: "2024-06-01T10:00:00", expected: "2024-06-01T10:00:00Z"},
		{literal: "2024-06-01T10:00:00+00:00", expected: "2024-06-01T10:00:00Z"},
		{literal: "2024-06-01T10:00:00+01:00", expected: "2024-06-01T10:00:00+0100"},
		{literal: "2024-06-01T10:00:00.5-0230", expected: "2024-06-01T10:00:00.500-0230"},
	}
	for _, tc := range testCases {
		t.Run(tc.literal, func(t *testing.T) {
			actual, err := formatDatetime(tc.literal)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
			_, err = types.ParseDatetime(actual)
			assert.NoError(t, err)
		})
	}

	_, err := formatDatetime("yesterday")
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	testCases := []struct {
		literal  string
		expected string
	}{
		{literal: "P2W", expected: "14d"},
		{literal: "P1D", expected: "1d0h0m0s0ms"},
		{literal: "PT1.5S", expected: "0d0h0m1s500ms"},
		{literal: "P1Y2M3DT4H5M6S", expected: "428d4h5m6s0ms"},
	}
	for _, tc := range testCases {
		t.Run(tc.literal, func(t *testing.T) {
			actual, err := formatDuration(tc.literal)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}

	for _, literal := range []string{"P", "P50539024859478224Y", "P2000000000000000000W", "P300000000000000D"} {
		_, err := formatDuration(literal)
		assert.Error(t, err, literal)
	}
}

func TestFormatIPAddr(t *testing.T) {
	actual, err := formatIPAddr("10.0.0.0/8")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/8", actual)

	actual, err = formatIPAddr("2001:0db8::0001")
	require.NoError(t, err)
	assert.Equal(t, "2001:db8::1", actual)

	_, err = formatIPAddr("300.1.1.1")
	assert.Error(t, err)
}

func TestDecimalValue(t *testing.T) {
	value, err := decimalValue(1.5, "1.5")
	require.NoError(t, err)
	assert.Equal(t, "1.5000", value.String)

	value, err = decimalValue(2.00004, "2.00004")
	require.NoError(t, err)
	assert.Equal(t, "2.0000", value.String)

	_, err = decimalValue(1e300, "1e300")
	var malformed *MalformedDecimalError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "1e300", malformed.Literal)
}

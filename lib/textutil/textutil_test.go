package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "unitedstates", NormalizeName("  United States\n"))
	require.Equal(t, "côted'ivoire", NormalizeName("Côte d'Ivoire"))
}

func TestParseCount(t *testing.T) {
	testCases := []struct {
		in     string
		expect int64
		err    bool
	}{
		{in: "1,234,567", expect: 1234567},
		{in: " 42 ", expect: 42},
		{in: "0", expect: 0},
		{in: "-5", expect: -5},
		{in: "", err: true},
		{in: "abc", err: true},
	}

	for _, test := range testCases {
		n, err := ParseCount(test.in)
		if test.err {
			require.Error(t, err, test.in)
			continue
		}
		require.NoError(t, err, test.in)
		require.Equal(t, test.expect, n)
	}
}

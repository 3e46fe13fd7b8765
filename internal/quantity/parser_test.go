// internal/quantity/parser_test.go
package quantity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	testCases := []struct {
		name         string
		raw          string
		defaultGroup Group
		expectErr    bool
		expected     Address
	}{
		{
			name:     "qualified",
			raw:      "page1.theta",
			expected: Address{Group: "page1", Name: "theta"},
		},
		{
			name:         "bare name uses default group",
			raw:          "freq",
			defaultGroup: "upper",
			expected:     Address{Group: "upper", Name: "freq"},
		},
		{
			name:     "numeric name",
			raw:      "page1.0",
			expected: Address{Group: "page1", Name: "0"},
		},
		{
			name:      "error - empty",
			raw:       "",
			expectErr: true,
		},
		{
			name:      "error - bare name without default group",
			raw:       "freq",
			expectErr: true,
		},
		{
			name:      "error - empty segment",
			raw:       "page1.",
			expectErr: true,
		},
		{
			name:      "error - too many segments",
			raw:       "a.b.c",
			expectErr: true,
		},
		{
			name:      "error - invalid characters",
			raw:       "page1.sin(theta)",
			expectErr: true,
		},
		{
			name:      "error - just hyphen",
			raw:       "page1.-",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := ParseAddress(tc.raw, tc.defaultGroup)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, addr)
		})
	}
}

func TestAddress_RoundTrip(t *testing.T) {
	for _, raw := range []string{"global.time", "row-8.shift_y", "lower.circle_sin"} {
		t.Run(raw, func(t *testing.T) {
			addr, err := ParseAddress(raw, "")
			require.NoError(t, err)
			assert.Equal(t, raw, addr.String())
		})
	}
}

func TestID(t *testing.T) {
	var zero ID
	assert.True(t, zero.IsZero())
	assert.False(t, ID{Index: 0, Gen: 1}.IsZero())
	assert.Equal(t, "q3/2", ID{Index: 3, Gen: 2}.String())
	assert.Equal(t, "dependent", Dependent.String())
	assert.Equal(t, "independent", Independent.String())
}

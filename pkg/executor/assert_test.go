package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestSegment(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		url      string
		want     string
		found    bool
	}{
		{
			name:     "transposed letters",
			expected: "dashbaord",
			url:      "https://app.example.com/dashboard",
			want:     "dashboard",
			found:    true,
		},
		{
			name:     "single missing letter",
			expected: "setings",
			url:      "https://app.example.com/account/settings",
			want:     "settings",
			found:    true,
		},
		{
			name:     "too far to be a typo",
			expected: "dashboard",
			url:      "https://app.example.com/billing",
			found:    false,
		},
		{
			name:     "picks closest segment",
			expected: "users",
			url:      "https://app.example.com/user/usersx",
			want:     "user",
			found:    true,
		},
		{
			name:     "no path",
			expected: "dashboard",
			url:      "https://app.example.com",
			found:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := SuggestSegment(tt.expected, tt.url)
			require.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestAssertionError_HintIsAppended(t *testing.T) {
	err := &AssertionError{
		Message: `expected URL to contain "dashbaord"`,
		Hint:    `did you mean "dashboard"?`,
	}
	assert.Contains(t, err.Error(), "dashbaord")
	assert.Contains(t, err.Error(), `did you mean "dashboard"?`)

	bare := &AssertionError{Message: "expected page to contain \"x\""}
	assert.Equal(t, "expected page to contain \"x\"", bare.Error())
}

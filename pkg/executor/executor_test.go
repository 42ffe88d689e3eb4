package executor

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(logger)
}

func TestRewritePageURL(t *testing.T) {
	tests := []struct {
		base string
		page string
		want string
	}{
		{"https://app.example.com", "homepage", "https://app.example.com/"},
		{"https://app.example.com/some/deep/path", "login", "https://app.example.com/login"},
		{"https://app.example.com/?utm=x", "contact", "https://app.example.com/contact"},
		{"http://localhost:3000", "register", "http://localhost:3000/register"},
		{"https://app.example.com", "Login", "https://app.example.com/login"},
	}

	for _, tt := range tests {
		got, err := RewritePageURL(tt.base, tt.page)
		require.NoError(t, err, "page %q", tt.page)
		assert.Equal(t, tt.want, got)
	}
}

func TestRewritePageURL_UnknownPage(t *testing.T) {
	_, err := RewritePageURL("https://app.example.com", "dashboard")
	assert.Error(t, err)
}

func TestHostAllowed(t *testing.T) {
	e := New(nil, nil, "https://app.example.com", testLog(),
		WithAllowedHosts([]string{"*.example.com", "localhost"}))

	assert.True(t, e.hostAllowed("app.example.com"))
	assert.True(t, e.hostAllowed("localhost"))
	assert.False(t, e.hostAllowed("evil.com"))
}

func TestHostAllowed_InvalidPatternIgnored(t *testing.T) {
	e := New(nil, nil, "https://app.example.com", testLog(),
		WithAllowedHosts([]string{"[", "localhost"}))

	assert.True(t, e.hostAllowed("localhost"))
	assert.False(t, e.hostAllowed("example.com"))
}

func TestNavigationRefusedError_Message(t *testing.T) {
	err := &NavigationRefusedError{URL: "https://evil.com/x", Host: "evil.com"}
	assert.Contains(t, err.Error(), "evil.com")
	assert.Contains(t, err.Error(), "allowlist")
}

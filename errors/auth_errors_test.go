package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, AuthRejected, CodeOf(NewAuthRejected("nope")))
	assert.Equal(t, RefreshExhausted, CodeOf(NewRefreshExhausted("gone")))
	assert.Equal(t, "", CodeOf(fmt.Errorf("plain error")))

	wrapped := fmt.Errorf("login: %w", NewNetworkError("connection refused"))
	assert.Equal(t, NetworkError, CodeOf(wrapped))
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsAuthRejected(NewAuthRejected("denied")))
	assert.False(t, IsAuthRejected(NewNetworkError("down")))
	assert.True(t, IsRefreshExhausted(NewRefreshExhausted("expired")))
}

func TestNoTokenIssuedIsMalformed(t *testing.T) {
	assert.Equal(t, MalformedResponse, CodeOf(NewNoTokenIssued()))
}

func TestMessageOrDefault(t *testing.T) {
	assert.Equal(t, "Invalid credentials", MessageOrDefault("Invalid credentials"))
	assert.Equal(t, DefaultMessage, MessageOrDefault(""))
}

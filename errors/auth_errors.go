package errors

import (
	stderrors "errors"
	"fmt"
)

// AuthError represents a failure in one of the session lifecycle flows.
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for the session lifecycle.
const (
	// NetworkError is a transport failure: the backend never produced a response.
	NetworkError = "network_error"
	// AuthRejected means the backend explicitly denied the credentials or token.
	AuthRejected = "auth_rejected"
	// MalformedResponse is a success response missing required fields.
	MalformedResponse = "malformed_response"
	// RefreshExhausted means the refresh attempt itself failed.
	RefreshExhausted = "refresh_exhausted"
)

// DefaultMessage is shown when the backend supplies no usable error message.
const DefaultMessage = "something went wrong, please try again"

// Common error constructors

func NewNetworkError(description string) *AuthError {
	return &AuthError{
		Code:    NetworkError,
		Message: description,
	}
}

func NewAuthRejected(description string) *AuthError {
	return &AuthError{
		Code:    AuthRejected,
		Message: description,
	}
}

func NewMalformedResponse(description string) *AuthError {
	return &AuthError{
		Code:    MalformedResponse,
		Message: description,
	}
}

func NewRefreshExhausted(description string) *AuthError {
	return &AuthError{
		Code:    RefreshExhausted,
		Message: description,
	}
}

// NewNoTokenIssued covers a login response that reports success but carries
// no bearer credential. A success flag without a usable token is not trusted.
func NewNoTokenIssued() *AuthError {
	return &AuthError{
		Code:    MalformedResponse,
		Message: "login succeeded but no token was issued",
	}
}

// CodeOf returns the AuthError code carried by err, or "" if err is not an
// AuthError.
func CodeOf(err error) string {
	var ae *AuthError
	if stderrors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// IsAuthRejected reports whether err carries the auth_rejected code.
func IsAuthRejected(err error) bool {
	return CodeOf(err) == AuthRejected
}

// IsRefreshExhausted reports whether err carries the refresh_exhausted code.
func IsRefreshExhausted(err error) bool {
	return CodeOf(err) == RefreshExhausted
}

// MessageOrDefault returns msg when non-empty, else the generic fallback
// shown to end users.
func MessageOrDefault(msg string) string {
	if msg != "" {
		return msg
	}
	return DefaultMessage
}

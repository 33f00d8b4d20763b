package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_TokenAtTopLevel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/users/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "rider@example.com", req.Email)

		json.NewEncoder(w).Encode(LoginResponse{
			Success:      true,
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			User:         &User{Email: req.Email, Role: "user"},
		})
	}))
	defer server.Close()

	client := New(server.URL)
	resp, err := client.Login(context.Background(), "rider@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "access-1", resp.BearerToken())
	assert.Equal(t, "refresh-1", resp.RefreshTokenValue())
}

func TestLogin_LegacyTokenFieldOnUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user": map[string]any{
				"email": "rider@example.com",
				"token": "legacy-token",
			},
		})
	}))
	defer server.Close()

	client := New(server.URL)
	resp, err := client.Login(context.Background(), "rider@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "legacy-token", resp.BearerToken())
}

func TestLogin_ServerMessageSurfacedOnDenial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	}))
	defer server.Close()

	client := New(server.URL)
	_, err := client.Login(context.Background(), "rider@example.com", "wrong")
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.True(t, httpErr.IsUnauthorized())
	assert.Equal(t, "Invalid credentials", httpErr.Message)
}

func TestProfile_SendsBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/profile", r.URL.Path)
		require.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(ProfileResponse{User: &User{Email: "a@b.com", Role: "user"}})
	}))
	defer server.Close()

	client := New(server.URL)
	resp, err := client.Profile(context.Background(), "abc")
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "a@b.com", resp.User.Email)
}

func TestRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/refresh-token", r.URL.Path)
		var req RefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "old-refresh", req.RefreshToken)
		json.NewEncoder(w).Encode(RefreshResponse{Success: true, AccessToken: "new", RefreshToken: "new2"})
	}))
	defer server.Close()

	client := New(server.URL)
	resp, err := client.RefreshToken(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new", resp.AccessToken)
	assert.Equal(t, "new2", resp.RefreshToken)
}

func TestDoRequest_TransportFailure(t *testing.T) {
	client := New("http://127.0.0.1:0")
	_, err := client.Profile(context.Background(), "abc")
	require.Error(t, err)

	var httpErr *HTTPError
	assert.False(t, errors.As(err, &httpErr), "transport failures must not look like HTTP denials")
}

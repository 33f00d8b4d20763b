package session

import (
	"io"
	"net/http"
)

// Transport is the authorization interceptor wrapping all outbound requests
// to the backend. It attaches the bearer credential before each request and,
// on the first 401 of a request, refreshes the token pair through the
// manager and re-issues the request exactly once. The caller never observes
// the intermediate 401 when the retry succeeds. Requests whose body cannot be
// replayed still trigger the refresh, so the 401 surfaces but subsequent
// requests carry the rotated token.
//
// Any secondary HTTP client must wrap itself in this transport instead of
// re-implementing the refresh protocol.
type Transport struct {
	manager *Manager
	base    http.RoundTripper
}

// NewTransport creates the interceptor. A nil base falls back to
// http.DefaultTransport.
func NewTransport(m *Manager, base http.RoundTripper) *Transport {
	return &Transport{manager: m, base: base}
}

func (t *Transport) roundTripper() http.RoundTripper {
	if t.base != nil {
		return t.base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	attempt := req.Clone(req.Context())
	if tok := t.manager.Token(); tok != "" {
		attempt.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := t.roundTripper().RoundTrip(attempt)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// A consumed body without GetBody cannot be replayed. Still rotate the
	// token pair so later requests carry a working credential, then surface
	// the 401 for this one.
	if req.Body != nil && req.GetBody == nil {
		t.manager.Refresh(req.Context()) //nolint:errcheck // failure already cleared the session
		return resp, nil
	}

	newToken, refreshErr := t.manager.Refresh(req.Context())
	if refreshErr != nil {
		// Manager already cleared the session and fired the expiry hook.
		// The original 401 is what the caller gets to see.
		return resp, nil
	}

	// The retried request is terminal: a second 401 passes through without
	// another refresh attempt.
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain before reuse
	resp.Body.Close()              //nolint:errcheck

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+newToken)

	return t.roundTripper().RoundTrip(retry)
}

var _ http.RoundTripper = (*Transport)(nil)

package session

import (
	"strings"

	"github.com/motomarkt/motomarkt-go/api"
)

// Role is the account role carried by a session.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Session is the record of a logged-in user: identity plus the bearer
// credentials authorizing backend calls. It lives in memory inside the
// Manager and is mirrored into a Store across restarts.
type Session struct {
	UserID          string `json:"userId,omitempty"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	Email           string `json:"email,omitempty"`
	Role            Role   `json:"role,omitempty"`
	AccessToken     string `json:"accessToken,omitempty"`
	RefreshToken    string `json:"refreshToken,omitempty"`
	ProfileImageRef string `json:"profileImage,omitempty"`
}

// Valid reports whether the record satisfies the all-or-nothing invariant:
// a usable session carries both a bearer credential and an identity. A token
// without identity, or identity without a token, is corrupt.
func (s *Session) Valid() bool {
	if s == nil {
		return false
	}
	return s.AccessToken != "" && (s.Email != "" || s.UserID != "")
}

// HasTokens reports whether the record carries any credential at all. A
// persisted record failing this check is discarded without a profile check.
func (s *Session) HasTokens() bool {
	return s != nil && (s.AccessToken != "" || s.RefreshToken != "")
}

// IsAdmin reports whether the session belongs to a back-office account.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// DisplayName returns a printable name for the user, falling back to email.
func (s *Session) DisplayName() string {
	name := strings.TrimSpace(s.FirstName + " " + s.LastName)
	if name != "" {
		return name
	}
	return s.Email
}

// Clone returns a copy so callers cannot mutate the manager-owned record.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	dup := *s
	return &dup
}

// Merge folds server-provided fields into the session. Identity fields
// overwrite, while existing tokens are preserved when the server response
// does not supply replacements.
func (s *Session) Merge(u *api.User) {
	if u == nil {
		return
	}
	if u.ID != "" {
		s.UserID = u.ID
	}
	if u.FirstName != "" {
		s.FirstName = u.FirstName
	}
	if u.LastName != "" {
		s.LastName = u.LastName
	}
	if u.Email != "" {
		s.Email = u.Email
	}
	if u.Role != "" {
		s.Role = Role(u.Role)
	}
	if u.ProfileImage != "" {
		s.ProfileImageRef = u.ProfileImage
	}
	if tok := u.BearerToken(); tok != "" {
		s.AccessToken = tok
	}
	if u.RefreshToken != "" {
		s.RefreshToken = u.RefreshToken
	}
}

// FromLogin builds a fresh session from a login response.
func FromLogin(resp *api.LoginResponse) *Session {
	s := &Session{
		AccessToken:  resp.BearerToken(),
		RefreshToken: resp.RefreshTokenValue(),
	}
	s.Merge(resp.User)
	return s
}

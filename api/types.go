package api

// User is the identity payload returned by the marketplace backend. The
// backend flattens credentials into the same object on login, and some
// deployments still send the access token under the legacy "token" key.
type User struct {
	ID           string `json:"_id,omitempty"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Role         string `json:"role,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	Token        string `json:"token,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// BearerToken returns the access token, falling back to the legacy field.
func (u *User) BearerToken() string {
	if u == nil {
		return ""
	}
	if u.AccessToken != "" {
		return u.AccessToken
	}
	return u.Token
}

// LoginRequest is the payload for POST /users/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the login endpoint response. Token fields may appear at
// the top level, nested in the user object, or both.
type LoginResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	Token        string `json:"token,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// BearerToken returns the issued access token wherever the backend put it,
// or "" when the response carries no usable credential.
func (r *LoginResponse) BearerToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	if r.Token != "" {
		return r.Token
	}
	return r.User.BearerToken()
}

// RefreshTokenValue returns the refresh token from either level.
func (r *LoginResponse) RefreshTokenValue() string {
	if r.RefreshToken != "" {
		return r.RefreshToken
	}
	if r.User != nil {
		return r.User.RefreshToken
	}
	return ""
}

// RegisterRequest is the payload for POST /users/register.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone,omitempty"`
}

// RegisterResponse is the registration endpoint response.
type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ProfileResponse is the GET /users/profile response.
type ProfileResponse struct {
	User *User `json:"user"`
}

// RefreshRequest is the payload for POST /users/refresh-token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse is the refresh endpoint response carrying the rotated pair.
type RefreshResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

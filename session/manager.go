package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"

	"github.com/motomarkt/motomarkt-go/api"
	autherr "github.com/motomarkt/motomarkt-go/errors"
	"github.com/motomarkt/motomarkt-go/log"
)

// State is the manager's authentication state.
type State int

const (
	// StateInitializing lasts from construction until Restore completes.
	// It is entered once per process lifetime and never re-entered.
	StateInitializing State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// AuthAPI is the slice of the backend client the manager depends on.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	Profile(ctx context.Context, accessToken string) (*api.ProfileResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*api.RefreshResponse, error)
}

const defaultProfileTTL = 30 * time.Second

// Manager owns the session record: it exchanges credentials for tokens,
// restores the record at startup, rotates the token pair on expiry, and
// exposes read-only accessors to the rest of the application. All writes to
// the persisted session slot go through it.
type Manager struct {
	backend AuthAPI
	store   Store
	logger  log.Logger

	mu      sync.RWMutex
	state   State
	current *Session

	restoreOnce  sync.Once
	refreshGroup singleflight.Group

	profileTTL time.Duration
	profiles   *ttlcache.Cache[string, *api.User]

	onExpired func(context.Context)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the diagnostics logger. Defaults to a no-op logger.
func WithLogger(l log.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithExpiryHook registers the navigation callback fired on logout and on
// confirmed refresh failure. The view layer redirects to login from it.
func WithExpiryHook(fn func(context.Context)) Option {
	return func(m *Manager) {
		m.onExpired = fn
	}
}

// WithProfileCacheTTL overrides how long fetched profiles are served from
// cache before re-hitting the backend.
func WithProfileCacheTTL(d time.Duration) Option {
	return func(m *Manager) {
		m.profileTTL = d
	}
}

// NewManager creates a manager in the Initializing state. Call Restore once
// at application start, then Close when done to stop the cache janitor.
func NewManager(backend AuthAPI, store Store, opts ...Option) *Manager {
	m := &Manager{
		backend:    backend,
		store:      store,
		logger:     log.NewNop(),
		state:      StateInitializing,
		profileTTL: defaultProfileTTL,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.profiles = ttlcache.New(
		ttlcache.WithTTL[string, *api.User](m.profileTTL),
		ttlcache.WithDisableTouchOnHit[string, *api.User](),
	)
	go m.profiles.Start()

	return m
}

// Close stops background cache cleanup.
func (m *Manager) Close() {
	m.profiles.Stop()
}

// State returns the current authentication state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Current returns a copy of the session, or nil when unauthenticated.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Clone()
}

// Token returns the access token, or "" when unauthenticated. It reads the
// in-memory record; persisted storage is consulted only as a fallback while
// the manager has not yet been hydrated by Restore.
func (m *Manager) Token() string {
	m.mu.RLock()
	if m.current != nil {
		tok := m.current.AccessToken
		m.mu.RUnlock()
		return tok
	}
	hydrating := m.state == StateInitializing
	m.mu.RUnlock()

	if !hydrating {
		return ""
	}
	stored, err := m.store.Load(context.Background())
	if err != nil {
		return ""
	}
	return stored.AccessToken
}

// Restore runs the startup restoration protocol once: load the persisted
// record, validate it against the profile endpoint, and either hydrate the
// session or discard the record. Later calls return the settled state.
func (m *Manager) Restore(ctx context.Context) State {
	m.restoreOnce.Do(func() {
		m.restore(ctx)
	})
	return m.State()
}

func (m *Manager) restore(ctx context.Context) {
	stored, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Warn(ctx, "session restore: load failed", log.Fields{"error": err.Error()})
		}
		m.setUnauthenticated()
		return
	}

	if !stored.HasTokens() {
		m.logger.Warn(ctx, "session restore: record carries no credentials, discarding")
		m.clearStore(ctx)
		m.setUnauthenticated()
		return
	}

	profile, err := m.backend.Profile(ctx, stored.AccessToken)
	if err != nil {
		// A transient network error is indistinguishable from a stale token
		// here; an unconfirmed session is never kept.
		m.logger.Warn(ctx, "session restore: profile check failed, clearing session",
			log.Fields{"error": err.Error()})
		m.clearStore(ctx)
		m.setUnauthenticated()
		return
	}

	stored.Merge(profile.User)
	if !stored.Valid() {
		m.logger.Warn(ctx, "session restore: merged record still lacks identity, discarding")
		m.clearStore(ctx)
		m.setUnauthenticated()
		return
	}

	if err := m.store.Save(ctx, stored); err != nil {
		m.logger.Error(ctx, "session restore: persist merged record", err)
	}
	m.setAuthenticated(stored)
	m.logger.Info(ctx, "session restored", log.Fields{"email": stored.Email})
}

// Login exchanges credentials for a session. A failed login, including a
// success response without a usable token, leaves any existing session
// untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, autherr.NewAuthRejected("email and password are required")
	}

	resp, err := m.backend.Login(ctx, email, password)
	if err != nil {
		m.logger.Warn(ctx, "login failed", log.Fields{"email": email, "error": err.Error()})
		return nil, toAuthError(err)
	}

	sess := FromLogin(resp)
	if sess.AccessToken == "" {
		if !resp.Success {
			return nil, autherr.NewAuthRejected(autherr.MessageOrDefault(resp.Message))
		}
		m.logger.Warn(ctx, "login response reported success without a token", log.Fields{"email": email})
		return nil, autherr.NewNoTokenIssued()
	}

	if err := m.store.Save(ctx, sess); err != nil {
		// The session stays usable in memory for this process lifetime.
		m.logger.Error(ctx, "login: persist session", err)
	}
	m.setAuthenticated(sess)
	m.logger.Info(ctx, "login successful", log.Fields{"email": sess.Email})
	return sess.Clone(), nil
}

// Register is a pure passthrough to the backend; it never touches session
// state. The application requires an explicit login afterwards.
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	resp, err := m.backend.Register(ctx, req)
	if err != nil {
		m.logger.Warn(ctx, "registration failed", log.Fields{"email": req.Email, "error": err.Error()})
		return nil, toAuthError(err)
	}
	return resp, nil
}

// Logout unconditionally clears the persisted record and fires the expiry
// hook so the view layer navigates to login. Safe to call when already
// unauthenticated.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.RLock()
	wasAuthenticated := m.state == StateAuthenticated
	m.mu.RUnlock()

	m.expire(ctx)
	if wasAuthenticated {
		m.logger.Info(ctx, "logged out")
	}
}

// Profile returns the current user's identity, served from a short-lived
// per-token cache. A fresh fetch is merged into the session and persisted.
func (m *Manager) Profile(ctx context.Context) (*api.User, error) {
	tok := m.Token()
	if tok == "" {
		return nil, autherr.NewAuthRejected("not authenticated")
	}

	if item := m.profiles.Get(tok); item != nil {
		return item.Value(), nil
	}

	resp, err := m.backend.Profile(ctx, tok)
	if err != nil {
		return nil, toAuthError(err)
	}
	if resp.User == nil {
		return nil, autherr.NewMalformedResponse("profile response carried no user")
	}
	m.profiles.Set(tok, resp.User, ttlcache.DefaultTTL)

	m.mu.Lock()
	var snapshot *Session
	if m.current != nil {
		m.current.Merge(resp.User)
		snapshot = m.current.Clone()
	}
	m.mu.Unlock()
	if snapshot != nil {
		if err := m.store.Save(ctx, snapshot); err != nil {
			m.logger.Error(ctx, "profile: persist merged session", err)
		}
	}

	return resp.User, nil
}

// Refresh exchanges the refresh token for a rotated pair and returns the new
// access token. Concurrent callers share one in-flight exchange. A failed
// refresh clears the session and fires the expiry hook.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	tok, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		return m.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return tok.(string), nil
}

func (m *Manager) refresh(ctx context.Context) (string, error) {
	refreshToken := m.currentRefreshToken()
	if refreshToken == "" {
		return "", autherr.NewRefreshExhausted("no refresh token available")
	}

	resp, err := m.backend.RefreshToken(ctx, refreshToken)
	if err != nil {
		m.logger.Warn(ctx, "token refresh failed", log.Fields{"error": err.Error()})
		m.expire(ctx)
		return "", autherr.NewRefreshExhausted(err.Error())
	}
	if resp.AccessToken == "" {
		m.logger.Warn(ctx, "token refresh response carried no access token")
		m.expire(ctx)
		return "", autherr.NewRefreshExhausted("refresh response carried no access token")
	}

	if !m.rotate(ctx, resp.AccessToken, resp.RefreshToken) {
		// A logout settled while the exchange was in flight; it wins. The
		// fresh token still serves the caller's one retry, nothing else.
		m.logger.Debug(ctx, "token rotation skipped, session no longer active")
		return resp.AccessToken, nil
	}
	m.logger.Debug(ctx, "token pair rotated")
	return resp.AccessToken, nil
}

// HTTPClient returns a client whose transport injects the bearer credential
// into every request and retries once after a successful refresh.
func (m *Manager) HTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: NewTransport(m, nil),
		Timeout:   timeout,
	}
}

func (m *Manager) currentRefreshToken() string {
	m.mu.RLock()
	if m.current != nil {
		rt := m.current.RefreshToken
		m.mu.RUnlock()
		return rt
	}
	m.mu.RUnlock()

	stored, err := m.store.Load(context.Background())
	if err != nil {
		return ""
	}
	return stored.RefreshToken
}

// rotate installs the new token pair, keeping the old refresh token when the
// backend did not rotate it. The published record is never mutated in place:
// readers access its fields under RLock, so the rotated record is built from
// a clone and swapped in under the write lock. Returns false when there is no
// session left to rotate, which happens when a logout settled while the
// exchange was in flight.
func (m *Manager) rotate(ctx context.Context, access, refresh string) bool {
	m.mu.RLock()
	base := m.current.Clone()
	m.mu.RUnlock()

	if base == nil {
		stored, err := m.store.Load(ctx)
		if err != nil {
			return false
		}
		base = stored
	}
	base.AccessToken = access
	if refresh != "" {
		base.RefreshToken = refresh
	}

	m.mu.Lock()
	if m.current == nil && m.state == StateUnauthenticated {
		// Logged out after the base snapshot was taken; the logout wins.
		m.mu.Unlock()
		return false
	}
	m.current = base
	m.state = StateAuthenticated
	m.mu.Unlock()

	if err := m.store.Save(ctx, base.Clone()); err != nil {
		m.logger.Error(ctx, "persist rotated token pair", err)
	}
	return true
}

// expire drops the session everywhere and fires the expiry hook.
func (m *Manager) expire(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error(ctx, "clear persisted session", err)
	}

	m.mu.Lock()
	m.current = nil
	m.state = StateUnauthenticated
	m.mu.Unlock()

	m.profiles.DeleteAll()

	if m.onExpired != nil {
		m.onExpired(ctx)
	}
}

func (m *Manager) setAuthenticated(s *Session) {
	m.mu.Lock()
	m.current = s
	m.state = StateAuthenticated
	m.mu.Unlock()
}

func (m *Manager) setUnauthenticated() {
	m.mu.Lock()
	m.current = nil
	m.state = StateUnauthenticated
	m.mu.Unlock()
}

func (m *Manager) clearStore(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error(ctx, "clear persisted session", err)
	}
}

// toAuthError maps backend failures onto the session error taxonomy: an
// explicit HTTP denial becomes auth_rejected carrying the server message,
// anything else is a transport failure.
func toAuthError(err error) *autherr.AuthError {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		return autherr.NewAuthRejected(autherr.MessageOrDefault(httpErr.Message))
	}
	return autherr.NewNetworkError(err.Error())
}

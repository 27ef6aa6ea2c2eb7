// Package session holds the signed-in user for one client run. A Session is
// created by the composition root and passed to whatever needs it.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/ethan2004g/interactive-web-novels/pkg/api"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/services"
	"go.uber.org/zap"
)

const (
	loginFailed    = "Login failed. Please check your credentials."
	registerFailed = "Registration failed. Please try again."
)

// Authenticator is satisfied by *services.AuthService.
type Authenticator interface {
	Login(ctx context.Context, creds data.Credentials) (data.AuthTokens, error)
	Register(ctx context.Context, req data.RegisterRequest) (data.AuthTokens, error)
	Logout() error
	IsAuthenticated() bool
}

// UserLoader is satisfied by *services.UserService.
type UserLoader interface {
	Me(ctx context.Context) (*data.User, error)
}

type Snapshot struct {
	User    *data.User
	Loading bool
	Err     string
}

type Session struct {
	auth   Authenticator
	users  UserLoader
	nav    Navigator
	logger *zap.Logger

	mu      sync.RWMutex
	user    *data.User
	loading bool
	err     string
}

func New(auth Authenticator, users UserLoader, nav Navigator, logger *zap.Logger) *Session {
	if nav == nil {
		nav = NopNavigator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		auth:    auth,
		users:   users,
		nav:     nav,
		logger:  logger,
		loading: true,
	}
}

// SetNavigator replaces the navigator. The TUI installs its own once the
// program exists.
func (s *Session) SetNavigator(nav Navigator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if nav == nil {
		nav = NopNavigator{}
	}
	s.nav = nav
}

// Load resolves the current user from the stored token. A token the backend
// rejects is cleared and the session ends up signed out.
func (s *Session) Load(ctx context.Context) error {
	defer s.setLoading(false)

	if !s.auth.IsAuthenticated() {
		s.setUser(nil)
		return nil
	}
	user, err := s.users.Me(ctx)
	if err != nil {
		s.logger.Warn("stored token rejected", zap.Error(err))
		if clearErr := s.auth.Logout(); clearErr != nil {
			s.logger.Error("clear tokens", zap.Error(clearErr))
		}
		s.setUser(nil)
		return err
	}
	s.setUser(user)
	return nil
}

func (s *Session) Login(ctx context.Context, creds data.Credentials) error {
	s.setErr("")
	if _, err := s.auth.Login(ctx, creds); err != nil {
		s.setErr(failureMessage(err, loginFailed))
		return err
	}
	return s.afterAuth(ctx)
}

func (s *Session) Register(ctx context.Context, req data.RegisterRequest) error {
	s.setErr("")
	if _, err := s.auth.Register(ctx, req); err != nil {
		s.setErr(failureMessage(err, registerFailed))
		return err
	}
	return s.afterAuth(ctx)
}

func (s *Session) afterAuth(ctx context.Context) error {
	user, err := s.users.Me(ctx)
	if err != nil {
		s.logger.Warn("load user after sign in", zap.Error(err))
		if clearErr := s.auth.Logout(); clearErr != nil {
			s.logger.Error("clear tokens", zap.Error(clearErr))
		}
		s.setUser(nil)
		s.setErr(failureMessage(err, loginFailed))
		return err
	}
	s.setUser(user)
	s.setLoading(false)
	s.navigate(RouteHome)
	return nil
}

// Logout clears tokens and the user, then sends the client to the login view.
func (s *Session) Logout() {
	if err := s.auth.Logout(); err != nil {
		s.logger.Error("clear tokens", zap.Error(err))
	}
	s.setUser(nil)
	s.setErr("")
	s.navigate(RouteLogin)
}

// UpdateUser replaces the cached user, e.g. after a profile edit.
func (s *Session) UpdateUser(u *data.User) {
	s.setUser(u)
}

func (s *Session) User() *data.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Loading: s.loading, Err: s.err}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// IsAuthenticated reports whether a user is loaded. This is stricter than
// the token presence check of the auth service.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *Session) IsAuthor() bool { return s.HasRole(data.RoleAuthor) }
func (s *Session) IsReader() bool { return s.HasRole(data.RoleReader) }
func (s *Session) IsAdmin() bool  { return s.HasRole(data.RoleAdmin) }

// HasRole reports whether the loaded user has any of roles.
func (s *Session) HasRole(roles ...data.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return false
	}
	for _, r := range roles {
		if s.user.Role == r {
			return true
		}
	}
	return false
}

func (s *Session) setUser(u *data.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.user = nil
		return
	}
	cp := *u
	s.user = &cp
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}

func (s *Session) setErr(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}

func (s *Session) navigate(r Route) {
	s.mu.RLock()
	nav := s.nav
	s.mu.RUnlock()
	nav.Navigate(r)
}

func failureMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if errors.Is(err, services.ErrValidation) {
		return err.Error()
	}
	return fallback
}

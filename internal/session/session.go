package session

import (
	"context"
	"log/slog"
	"time"

	"cv-site/internal/auth"
	"cv-site/internal/domain"
)

// Identity answers who a token belongs to (GET /api/auth/me).
type Identity interface {
	Me(ctx context.Context) (domain.AuthUser, error)
}

// Session tracks the signed-in user on top of a Store. The zero user is
// unauthenticated.
type Session struct {
	store    Store
	identity func(token string) Identity
	now      func() time.Time

	user domain.AuthUser
}

func New(store Store, identity func(token string) Identity) *Session {
	return &Session{store: store, identity: identity, now: time.Now}
}

// Init resolves the stored token into a user. A missing token leaves the
// session unauthenticated; an expired, rejected or unverifiable token is
// cleared from the store. The returned error only reports store failures.
func (s *Session) Init(ctx context.Context) error {
	s.user = domain.AuthUser{}
	token := s.store.Token()
	if token == "" {
		return nil
	}
	if auth.Expired(token, s.now()) {
		slog.Info("stored token expired")
		return s.store.ClearToken()
	}
	user, err := s.identity(token).Me(ctx)
	if err != nil {
		slog.Warn("token check failed", "error", err)
		return s.store.ClearToken()
	}
	if !user.Authenticated {
		return s.store.ClearToken()
	}
	s.user = user
	return nil
}

// Login stores token and resolves it.
func (s *Session) Login(ctx context.Context, token string) error {
	if err := s.store.SetToken(token); err != nil {
		return err
	}
	return s.Init(ctx)
}

func (s *Session) Logout() error {
	s.user = domain.AuthUser{}
	return s.store.ClearToken()
}

func (s *Session) User() domain.AuthUser { return s.user }

// Token is the stored token of the signed-in user, empty otherwise.
func (s *Session) Token() string {
	if !s.user.Authenticated {
		return ""
	}
	return s.store.Token()
}

func (s *Session) IsAdmin() bool { return s.user.Authenticated && s.user.IsAdmin }

func (s *Session) Theme() Theme { return s.store.Theme() }

func (s *Session) SetTheme(t Theme) error { return s.store.SetTheme(t) }

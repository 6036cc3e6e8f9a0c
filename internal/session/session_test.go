package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cv-site/internal/auth"
	"cv-site/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type identityFunc func(ctx context.Context) (domain.AuthUser, error)

func (f identityFunc) Me(ctx context.Context) (domain.AuthUser, error) { return f(ctx) }

func answering(user domain.AuthUser, err error, seen *[]string) func(string) Identity {
	return func(token string) Identity {
		if seen != nil {
			*seen = append(*seen, token)
		}
		return identityFunc(func(context.Context) (domain.AuthUser, error) { return user, err })
	}
}

var admin = domain.AuthUser{Authenticated: true, Email: "ams.8@msn.com", IsAdmin: true}

func TestInitWithoutToken(t *testing.T) {
	var seen []string
	s := New(NewMemoryStore("", ""), answering(admin, nil, &seen))

	require.NoError(t, s.Init(context.Background()))

	assert.False(t, s.User().Authenticated)
	assert.Empty(t, seen)
}

func TestInitResolvesUser(t *testing.T) {
	var seen []string
	store := NewMemoryStore("tok", "")
	s := New(store, answering(admin, nil, &seen))

	require.NoError(t, s.Init(context.Background()))

	assert.Equal(t, admin, s.User())
	assert.True(t, s.IsAdmin())
	assert.Equal(t, "tok", s.Token())
	assert.Equal(t, []string{"tok"}, seen)
}

func TestInitClearsBadTokens(t *testing.T) {
	tests := []struct {
		name string
		user domain.AuthUser
		err  error
	}{
		{"unauthenticated", domain.AuthUser{Authenticated: false}, nil},
		{"request failed", domain.AuthUser{}, errors.New("connection refused")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore("tok", ThemeLight)
			s := New(store, answering(tt.user, tt.err, nil))

			require.NoError(t, s.Init(context.Background()))

			assert.Empty(t, store.Token())
			assert.False(t, s.User().Authenticated)
			assert.Equal(t, ThemeLight, s.Theme())
		})
	}
}

func TestInitDropsExpiredTokenWithoutRequest(t *testing.T) {
	tok, err := auth.NewVerifier("k").Issue("a@b.c", true, time.Minute)
	require.NoError(t, err)
	var seen []string
	store := NewMemoryStore(tok, "")
	s := New(store, answering(admin, nil, &seen))
	s.now = func() time.Time { return time.Now().Add(time.Hour) }

	require.NoError(t, s.Init(context.Background()))

	assert.Empty(t, store.Token())
	assert.Empty(t, seen)
}

func TestLoginLogout(t *testing.T) {
	store := NewMemoryStore("", "")
	s := New(store, answering(domain.AuthUser{Authenticated: true, Email: "v@x.y"}, nil, nil))

	require.NoError(t, s.Login(context.Background(), "tok"))
	assert.True(t, s.User().Authenticated)
	assert.False(t, s.IsAdmin())

	require.NoError(t, s.Logout())
	assert.False(t, s.User().Authenticated)
	assert.Empty(t, store.Token())
	assert.Empty(t, s.Token())
}

func TestTheme(t *testing.T) {
	assert.Equal(t, ThemeDark, ParseTheme(""))
	assert.Equal(t, ThemeDark, ParseTheme("blue"))
	assert.Equal(t, ThemeLight, ParseTheme("light"))
	assert.Equal(t, ThemeLight, ThemeDark.Toggle())
	assert.Equal(t, ThemeDark, ThemeLight.Toggle())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")

	fs, err := OpenFileStore(path)
	require.NoError(t, err)
	assert.Empty(t, fs.Token())
	assert.Equal(t, ThemeDark, fs.Theme())

	require.NoError(t, fs.SetToken("tok"))
	require.NoError(t, fs.SetTheme(ThemeLight))

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, "tok", reopened.Token())
	assert.Equal(t, ThemeLight, reopened.Theme())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, reopened.ClearToken())
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "theme: light\n", string(b))
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: [unclosed"), 0o600))

	_, err := OpenFileStore(path)
	assert.Error(t, err)
}

package usecase

import (
	"context"
	"testing"
	"time"

	"cv-site/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoles(t *testing.T) {
	var tokens []string
	store := &fakeStore{doc: sampleDoc()}
	consoles := NewConsoles(func(token string) CVStore {
		tokens = append(tokens, token)
		return store
	}, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	consoles.now = func() time.Time { return now }
	admin := domain.AuthUser{Authenticated: true, Email: "ams.8@msn.com", IsAdmin: true}

	cs, err := consoles.Open(context.Background(), "tok-1", admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-1"}, tokens)
	_, ok := cs.Sync.Document()
	assert.True(t, ok)

	t.Run("get checks token", func(t *testing.T) {
		_, ok := consoles.Get(cs.ID, "other")
		assert.False(t, ok)
		got, ok := consoles.Get(cs.ID, "tok-1")
		require.True(t, ok)
		assert.Same(t, cs, got)
		_, ok = consoles.Get(uuid.New(), "tok-1")
		assert.False(t, ok)
	})

	t.Run("idle sessions expire", func(t *testing.T) {
		now = now.Add(30 * time.Second)
		_, ok := consoles.Get(cs.ID, "tok-1")
		require.True(t, ok)

		now = now.Add(2 * time.Minute)
		_, ok = consoles.Get(cs.ID, "tok-1")
		assert.False(t, ok)
		assert.Equal(t, 0, consoles.Len())
	})
}

func TestConsolesOpenKeepsSessionOnLoadFailure(t *testing.T) {
	store := &fakeStore{fetchErr: errUnavailable}
	consoles := NewConsoles(func(string) CVStore { return store }, 0)

	cs, err := consoles.Open(context.Background(), "tok", domain.AuthUser{Authenticated: true, IsAdmin: true})
	assert.ErrorIs(t, err, errUnavailable)
	require.NotNil(t, cs)
	assert.Equal(t, 1, consoles.Len())

	consoles.Close(cs.ID)
	assert.Equal(t, 0, consoles.Len())
	consoles.Close(cs.ID)
}

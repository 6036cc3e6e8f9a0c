package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cv-site/internal/domain"

	"github.com/google/uuid"
)

// ConsoleSession is the state of one signed-in console: the admin it
// belongs to and the document being edited.
type ConsoleSession struct {
	ID    uuid.UUID
	Token string
	User  domain.AuthUser
	Sync  *Synchronizer

	lastSeen time.Time
}

// Consoles keeps one Synchronizer per console login. Sessions are dropped
// on Close and after being idle longer than the configured timeout.
type Consoles struct {
	newStore func(token string) CVStore
	idle     time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*ConsoleSession
}

func NewConsoles(newStore func(token string) CVStore, idle time.Duration) *Consoles {
	return &Consoles{
		newStore: newStore,
		idle:     idle,
		now:      time.Now,
		sessions: map[uuid.UUID]*ConsoleSession{},
	}
}

// Open starts a console for token and fetches the document. The session is
// registered even when the first load fails so the page can offer a reload.
func (c *Consoles) Open(ctx context.Context, token string, user domain.AuthUser) (*ConsoleSession, error) {
	cs := &ConsoleSession{
		ID:    uuid.New(),
		Token: token,
		User:  user,
		Sync:  NewSynchronizer(c.newStore(token)),
	}
	c.mu.Lock()
	c.sweep()
	cs.lastSeen = c.now()
	c.sessions[cs.ID] = cs
	c.mu.Unlock()

	slog.Info("console session opened", "session", cs.ID, "email", user.Email)
	return cs, cs.Sync.Load(ctx)
}

// Get returns the live session id if it belongs to token.
func (c *Consoles) Get(id uuid.UUID, token string) (*ConsoleSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweep()
	cs, ok := c.sessions[id]
	if !ok || cs.Token != token {
		return nil, false
	}
	cs.lastSeen = c.now()
	return cs, true
}

func (c *Consoles) Close(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[id]; ok {
		delete(c.sessions, id)
		slog.Info("console session closed", "session", id)
	}
}

func (c *Consoles) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

func (c *Consoles) sweep() {
	if c.idle <= 0 {
		return
	}
	cutoff := c.now().Add(-c.idle)
	for id, cs := range c.sessions {
		if cs.lastSeen.Before(cutoff) {
			delete(c.sessions, id)
			slog.Info("console session expired", "session", id)
		}
	}
}

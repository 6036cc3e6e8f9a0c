package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ParseTheme maps anything but "light" to the dark default.
func ParseTheme(s string) Theme {
	if Theme(s) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Store is the small persisted client state: the bearer token and the
// theme preference.
type Store interface {
	Token() string
	SetToken(token string) error
	ClearToken() error
	Theme() Theme
	SetTheme(t Theme) error
}

type state struct {
	Token string `yaml:"token,omitempty"`
	Theme Theme  `yaml:"theme,omitempty"`
}

// FileStore keeps the state in a YAML file, rewritten on every change.
type FileStore struct {
	path string

	mu sync.Mutex
	st state
}

// OpenFileStore reads path if it exists. A missing file is an empty state.
func OpenFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if err := yaml.Unmarshal(b, &fs.st); err != nil {
		return nil, fmt.Errorf("parse session file %s: %w", path, err)
	}
	return fs, nil
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st.Token
}

func (f *FileStore) SetToken(token string) error {
	return f.change(func(s *state) { s.Token = token })
}

func (f *FileStore) ClearToken() error {
	return f.change(func(s *state) { s.Token = "" })
}

func (f *FileStore) Theme() Theme {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ParseTheme(string(f.st.Theme))
}

func (f *FileStore) SetTheme(t Theme) error {
	return f.change(func(s *state) { s.Theme = t })
}

func (f *FileStore) change(fn func(*state)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := f.st
	fn(&next)

	b, err := yaml.Marshal(next)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(f.path, b, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	f.st = next
	return nil
}

// MemoryStore holds the state for the lifetime of one value, e.g. the
// cookies of a single request.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	theme Theme
}

func NewMemoryStore(token string, theme Theme) *MemoryStore {
	return &MemoryStore{token: token, theme: theme}
}

func (m *MemoryStore) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *MemoryStore) SetToken(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ClearToken() error { return m.SetToken("") }

func (m *MemoryStore) Theme() Theme {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ParseTheme(string(m.theme))
}

func (m *MemoryStore) SetTheme(t Theme) error {
	m.mu.Lock()
	m.theme = t
	m.mu.Unlock()
	return nil
}

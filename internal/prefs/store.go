// Package prefs is the client-local key-value store: the cached current
// account and per-account dashboard display preferences. It is a display
// optimization, not a security boundary — nothing here is ever consulted
// for authorization.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/meucofre/cofre/internal/model"
)

// sessionKey is the fixed key holding the serialized current account.
const sessionKey = "session"

// ErrNotCached indicates the requested key has no stored value.
var ErrNotCached = errors.New("not cached")

// Store is a file-backed key-value store under the user config directory.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore opens (or creates) the preferences file in dir. An empty dir
// defaults to the platform user config directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config directory: %w", err)
		}
		dir = filepath.Join(base, "cofre")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create preferences directory: %w", err)
	}
	return &Store{path: filepath.Join(dir, "prefs.json")}, nil
}

// CachedSession is the serialized shape of the fixed session key.
type CachedSession struct {
	Account model.Account `json:"account"`
	Token   string        `json:"token"`
}

// DashboardPrefs holds per-account widget visibility and ordering.
type DashboardPrefs struct {
	Visible []string `json:"visible"`
	Order   []string `json:"order"`
}

// SaveSession caches the current account and session token.
func (s *Store) SaveSession(account *model.Account, token string) error {
	return s.set(sessionKey, CachedSession{Account: *account, Token: token})
}

// SaveAccount updates the cached current account, preserving whatever
// session token is already stored. Used on context switches.
func (s *Store) SaveAccount(account *model.Account) error {
	token := ""
	if cached, err := s.LoadSession(); err == nil {
		token = cached.Token
	}
	return s.set(sessionKey, CachedSession{Account: *account, Token: token})
}

// LoadSession returns the cached account and token, or ErrNotCached.
func (s *Store) LoadSession() (*CachedSession, error) {
	var cached CachedSession
	if err := s.get(sessionKey, &cached); err != nil {
		return nil, err
	}
	return &cached, nil
}

// ClearSession drops the cached session on logout.
func (s *Store) ClearSession() error {
	return s.delete(sessionKey)
}

// SaveDashboard stores the widget layout for an account.
func (s *Store) SaveDashboard(accountID string, p DashboardPrefs) error {
	return s.set("dashboard:"+accountID, p)
}

// Dashboard returns the widget layout for an account, or ErrNotCached.
func (s *Store) Dashboard(accountID string) (*DashboardPrefs, error) {
	var p DashboardPrefs
	if err := s.get("dashboard:"+accountID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode preference %q: %w", key, err)
	}
	entries[key] = encoded

	return s.write(entries)
}

func (s *Store) get(key string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}

	raw, ok := entries[key]
	if !ok {
		return ErrNotCached
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode preference %q: %w", key, err)
	}
	return nil
}

func (s *Store) delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	delete(entries, key)

	return s.write(entries)
}

func (s *Store) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	entries := make(map[string]json.RawMessage)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			// A corrupt cache is recoverable; start fresh.
			return make(map[string]json.RawMessage), nil
		}
	}
	return entries, nil
}

func (s *Store) write(entries map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}

// Package session persists the authenticated session across process runs,
// the way the original web client kept token and user in local storage.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// User is the minimal descriptor kept alongside the token. The ID comes from
// the token's own claims, the rest from the auth response.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Session is the credential material held by a running client.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Store persists one session as a single JSON file. Token and user are always
// written together, so a crash can never leave one without the other.
type Store struct {
	path string
}

// NewStore builds a Store persisting to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted session. Missing or corrupt data is not an error:
// it reads as "no session".
func (s *Store) Load() (*Session, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, nil
	}
	if sess.Token == "" || sess.User.Username == "" {
		return nil, nil
	}
	return &sess, nil
}

// Save persists the session atomically: write a temp file, then rename.
func (s *Store) Save(sess *Session) error {
	if sess == nil {
		return fmt.Errorf("save session: nil session")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// Clear removes the persisted session. Clearing an absent session is fine.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultProfile is the session profile used when none is specified
const DefaultProfile = "default"

// Cookie is the persisted form of a browser cookie. It mirrors the fields
// the automation layer needs to rebuild an authenticated context.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	Secure   bool    `json:"secure"`
	HTTPOnly bool    `json:"http_only"`
	SameSite string  `json:"same_site,omitempty"`
}

// SessionStore persists browser session state (cookies) as one JSON file
// per profile under a configurable directory.
type SessionStore struct {
	dir string
}

// NewSessionStore creates a session store rooted at dir
func NewSessionStore(dir string) *SessionStore {
	return &SessionStore{dir: dir}
}

func (s *SessionStore) path(profile string) string {
	if profile == "" {
		profile = DefaultProfile
	}
	return filepath.Join(s.dir, profile+".json")
}

// Exists reports whether a session has been persisted for the profile
func (s *SessionStore) Exists(profile string) bool {
	info, err := os.Stat(s.path(profile))
	return err == nil && info.Size() > 0
}

// Load reads the persisted session for the profile. A missing or corrupt
// session file is treated as "no session", not an error.
func (s *SessionStore) Load(profile string) ([]Cookie, bool) {
	data, err := os.ReadFile(s.path(profile))
	if err != nil {
		return nil, false
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, false
	}

	if len(cookies) == 0 {
		return nil, false
	}

	return cookies, true
}

// Save persists the session for the profile, overwriting any previous one
func (s *SessionStore) Save(profile string, cookies []Cookie) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return os.WriteFile(s.path(profile), data, 0600)
}

// Delete removes the persisted session for the profile
func (s *SessionStore) Delete(profile string) error {
	err := os.Remove(s.path(profile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

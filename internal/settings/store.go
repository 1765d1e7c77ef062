package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Settings holds the user-editable configuration managed through the UI
type Settings struct {
	APIKey      string `json:"api_key"`
	DownloadDir string `json:"download_dir"`
}

// Store persists settings as a JSON file
type Store struct {
	filepath   string
	defaultDir string
	mu         sync.Mutex
}

// NewStore creates a new file-based settings store. defaultDir is used when
// no download directory has been configured.
func NewStore(filepath, defaultDir string) *Store {
	return &Store{filepath: filepath, defaultDir: defaultDir}
}

// Load reads the settings from disk. A missing file is not an error and
// yields zero settings.
func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var settings Settings
	data, err := os.ReadFile(s.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings file: %w", err)
	}

	return settings, nil
}

// Save writes the settings to disk, overwriting any previous content
func (s *Store) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	return os.WriteFile(s.filepath, data, 0600)
}

// DownloadDir resolves the effective downloads directory: the configured
// value with ~ expansion and absolute-path normalization, or the default.
func (s *Store) DownloadDir() string {
	settings, err := s.Load()
	if err != nil {
		return s.defaultDir
	}

	dir := strings.TrimSpace(settings.DownloadDir)
	if dir == "" {
		return s.defaultDir
	}

	if strings.HasPrefix(dir, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}

	if !filepath.IsAbs(dir) {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
	}

	return dir
}

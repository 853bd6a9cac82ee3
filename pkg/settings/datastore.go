package settings

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultScriptURL is used until the user saves a script URL of their own.
const DefaultScriptURL = "https://script.google.com/macros/s/default/exec"

// Settings is everything the client persists between runs.
type Settings struct {
	ScriptURL string `toml:"script_url"`
}

// Store is a Settings value backed by a toml file.
type Store struct {
	Filename string
	Settings Settings
}

// Save writes the current settings out to the toml file.
func (s *Store) Save() error {
	b, err := toml.Marshal(s.Settings)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.Filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.Filename, b, 0o644)
}

// Load reads the settings from the toml file.
func (s *Store) Load() error {
	b, err := os.ReadFile(s.Filename)
	if err != nil {
		return err
	}
	return toml.Unmarshal(b, &s.Settings)
}

// ScriptURL returns the saved script URL, or DefaultScriptURL.
func (s *Store) ScriptURL() string {
	if s.Settings.ScriptURL == "" {
		return DefaultScriptURL
	}
	return s.Settings.ScriptURL
}

// SetScriptURL records url and saves it.
func (s *Store) SetScriptURL(url string) error {
	s.Settings.ScriptURL = url
	return s.Save()
}

// Open loads the settings file, creating it when it does not exist yet.
func Open(filename string) (*Store, error) {
	s := &Store{Filename: filename}
	if err := s.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err := s.Save(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// DefaultPath is the settings file under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "roweditor", "settings.toml"), nil
}

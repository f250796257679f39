// Package session persists the logged-in identity between runs.
// The identity is stored as a single TOML file, ~/.config/walkin/session.toml
// by default, and removed entirely at logout.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/walkin/internal/clinic"
)

const defaultSessionPath = "~/.config/walkin/session.toml"

type file struct {
	User    clinic.Identity `toml:"user"`
	SavedAt time.Time       `toml:"saved_at"`
}

// DefaultPath returns the default session file path.
func DefaultPath() string {
	return defaultSessionPath
}

// Load restores the cached identity. A missing, unreadable or corrupt file
// means nobody is logged in.
func Load(path string) (clinic.Identity, bool) {
	resolved, err := resolvePath(path)
	if err != nil {
		return clinic.Identity{}, false
	}

	f, err := os.Open(resolved)
	if err != nil {
		return clinic.Identity{}, false
	}
	defer func() { _ = f.Close() }()

	bytes, err := io.ReadAll(f)
	if err != nil {
		return clinic.Identity{}, false
	}

	var stored file
	if err := toml.Unmarshal(bytes, &stored); err != nil {
		return clinic.Identity{}, false
	}
	if stored.User.DisplayName() == "" {
		return clinic.Identity{}, false
	}
	return stored.User, true
}

// Save writes the identity, creating directories as needed.
func Save(path string, identity clinic.Identity) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	bytes, err := toml.Marshal(file{User: identity, SavedAt: time.Now().UTC().Truncate(time.Second)})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	return nil
}

// Clear removes the session file. A missing file is not an error.
func Clear(path string) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultSessionPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// tokenFileName is the file the token is persisted under in the verse
// config directory.
const tokenFileName = "spotify_token.json"

// TokenStorage persists tokens to disk with owner-only permissions.
type TokenStorage struct {
	path string
}

// NewTokenStorage creates token storage at path, or at the default location
// ($XDG_CONFIG_HOME/verse/spotify_token.json) when path is empty.
func NewTokenStorage(path string) (*TokenStorage, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		path = filepath.Join(configDir, "verse", tokenFileName)
	}
	return &TokenStorage{path: path}, nil
}

// Save writes the token to disk.
func (s *TokenStorage) Save(token *Token) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Load reads the token from disk. A missing file returns (nil, nil).
func (s *TokenStorage) Load() (*Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// Delete removes the stored token. Deleting a missing file is not an error.
func (s *TokenStorage) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// Path returns the token file location.
func (s *TokenStorage) Path() string {
	return s.path
}

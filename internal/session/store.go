package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// ErrNoCredential means no token is persisted. It is the normal
// logged-out state, not a failure.
var ErrNoCredential = errors.New("no stored credential")

// Store persists the single credential token between runs.
type Store interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// DefaultPath returns $NEWSDASH_CREDENTIALS_FILE, falling back to
// credentials.json in the XDG config dir.
func DefaultPath() string {
	if p := os.Getenv("NEWSDASH_CREDENTIALS_FILE"); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, "newsdash", "credentials.json")
}

type credentialFile struct {
	Token string `json:"token"`
}

// FileStore keeps the token in a 0600 JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoCredential
		}
		return "", fmt.Errorf("reading credentials %s: %w", s.path, err)
	}

	var cf credentialFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return "", fmt.Errorf("parsing credentials %s: %w", s.path, err)
	}
	token := strings.TrimSpace(cf.Token)
	if token == "" {
		return "", ErrNoCredential
	}
	return token, nil
}

func (s *FileStore) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("refusing to save an empty token")
	}
	data, err := json.MarshalIndent(credentialFile{Token: token}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating credentials dir %s: %w", dir, err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing credentials %s: %w", s.path, err)
	}
	return nil
}

// Clear removes the token. Clearing an absent token is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing credentials %s: %w", s.path, err)
	}
	return nil
}

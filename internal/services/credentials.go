package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clouide/clouide/internal/models"
	"github.com/clouide/clouide/internal/workspace"
	"github.com/fernet/fernet-go"
)

// ErrNoCredentials is returned when a session has not logged in
var ErrNoCredentials = errors.New("no credentials found, please login first")

// encryptedPrefix marks tokens sealed with the store's fernet key
const encryptedPrefix = "fernet:"

// CredentialStore persists one {username, token} record per session in
// <base>/<session>/config.json, outside the workspace so it survives wipes.
// When a key is configured, tokens are sealed with fernet at rest.
type CredentialStore struct {
	resolver *workspace.Resolver
	key      *fernet.Key
}

// NewCredentialStore creates a store. encodedKey may be empty to store tokens as-is.
func NewCredentialStore(resolver *workspace.Resolver, encodedKey string) (*CredentialStore, error) {
	store := &CredentialStore{resolver: resolver}
	if encodedKey != "" {
		key, err := fernet.DecodeKey(encodedKey)
		if err != nil {
			return nil, fmt.Errorf("decode credential key: %w", err)
		}
		store.key = key
	}
	return store, nil
}

// Save writes the record for sessionID, replacing any previous one
func (s *CredentialStore) Save(sessionID string, creds models.Credentials) error {
	path, err := s.resolver.ConfigPath(sessionID)
	if err != nil {
		return err
	}

	stored := creds
	if s.key != nil {
		tok, err := fernet.EncryptAndSign([]byte(creds.Token), s.key)
		if err != nil {
			return fmt.Errorf("encrypt token: %w", err)
		}
		stored.Token = encryptedPrefix + string(tok)
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	// Write then rename so a concurrent Load never sees a partial record
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	return nil
}

// Load returns the record for sessionID or ErrNoCredentials
func (s *CredentialStore) Load(sessionID string) (*models.Credentials, error) {
	path, err := s.resolver.ConfigPath(sessionID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoCredentials
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds models.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("corrupt credential record: %w", err)
	}

	if strings.HasPrefix(creds.Token, encryptedPrefix) {
		if s.key == nil {
			return nil, fmt.Errorf("credential record is encrypted but no key is configured")
		}
		msg := fernet.VerifyAndDecrypt([]byte(strings.TrimPrefix(creds.Token, encryptedPrefix)), 0*time.Second, []*fernet.Key{s.key})
		if msg == nil {
			return nil, fmt.Errorf("decrypt token: invalid token")
		}
		creds.Token = string(msg)
	}

	if creds.Username == "" || creds.Token == "" {
		return nil, ErrNoCredentials
	}
	return &creds, nil
}

// Delete removes the record. Deleting a missing record succeeds.
func (s *CredentialStore) Delete(sessionID string) error {
	path, err := s.resolver.ConfigPath(sessionID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// Package credential stores the gateway bearer credential in the system
// keyring.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const (
	serviceName = "teamboard"

	// TokenKey is the keyring entry holding the bearer credential.
	TokenKey = "gateway-token"
)

// ErrNotFound is returned when no credential is stored.
var ErrNotFound = errors.New("credential not found")

// Store reads and writes credentials. The zero value uses the system
// keyring; tests swap in an in-memory backend with NewStore.
type Store struct {
	open func() (keyring.Keyring, error)
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{open: func() (keyring.Keyring, error) { return ring, nil }}
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/teamboard/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("teamboard-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

func (s *Store) ring() (keyring.Keyring, error) {
	if s == nil || s.open == nil {
		return openKeyring()
	}
	return s.open()
}

// Get retrieves a credential value by key.
func (s *Store) Get(key string) (string, error) {
	ring, err := s.ring()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key.
func (s *Store) Set(key, value string) error {
	ring, err := s.ring()
	if err != nil {
		return err
	}
	if err := ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: "teamboard " + key}); err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	ring, err := s.ring()
	if err != nil {
		return err
	}
	if err := ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// SaveToken stores the gateway bearer credential.
func (s *Store) SaveToken(token string) error { return s.Set(TokenKey, token) }

// LoadToken returns the stored bearer credential or ErrNotFound.
func (s *Store) LoadToken() (string, error) { return s.Get(TokenKey) }

// DeleteToken forgets the bearer credential.
func (s *Store) DeleteToken() error { return s.Delete(TokenKey) }

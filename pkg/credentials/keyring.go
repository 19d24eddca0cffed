package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

// Keyring stores one token per vehicle in an OS credential store (or an encrypted file on
// headless systems), using keyring's platform-agnostic interface.
type Keyring struct {
	ring keyring.Keyring
}

// NewKeyring wraps an open keyring.
func NewKeyring(ring keyring.Keyring) *Keyring {
	return &Keyring{ring: ring}
}

// OpenFileKeyring opens a file-backed keyring in dir. The password protects tokens at rest;
// an empty password stores them obfuscated but effectively unencrypted.
func OpenFileKeyring(dir, password string) (*Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "vehicle-adapter",
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          dir,
		FilePasswordFunc: keyring.FixedStringPrompt(password),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring in %s: %w", dir, err)
	}
	return NewKeyring(ring), nil
}

func (k *Keyring) Get(_ context.Context, vehicleID string) (string, error) {
	item, err := k.ring.Get(vehicleID)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("credential store read failed: %w", err)
	}
	return string(item.Data), nil
}

func (k *Keyring) Put(_ context.Context, vehicleID, token string) error {
	err := k.ring.Set(keyring.Item{
		Key:   vehicleID,
		Data:  []byte(token),
		Label: "vehicle API token",
	})
	if err != nil {
		return fmt.Errorf("credential store write failed: %w", err)
	}
	return nil
}

// Package credential stores the YouTube API key either in the config file
// or in the operating system keyring.
package credential

import (
	"errors"
	"fmt"

	"github.com/nepochemu/ytm/internal/config"
	"github.com/zalando/go-keyring"
)

const (
	service = "ytm"
	user    = "youtube-api-key"
)

// ErrNotFound means no API key has been stored yet.
var ErrNotFound = errors.New("api key not configured")

// Store reads and writes the API key.
type Store interface {
	Get() (string, error)
	Set(key string) error
	Delete() error
}

// ForConfig returns the store selected by cfg.CredentialStore.
func ForConfig(cfg *config.Config) (Store, error) {
	switch cfg.CredentialStore {
	case "", config.StoreConfig:
		return &ConfigStore{cfg: cfg}, nil
	case config.StoreKeyring:
		return &KeyringStore{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown credential store %q (want %q or %q)",
			cfg.CredentialStore, config.StoreConfig, config.StoreKeyring)
	}
}

// ConfigStore keeps the key in config.yaml.
type ConfigStore struct {
	cfg *config.Config
}

func (s *ConfigStore) Get() (string, error) {
	if s.cfg.APIKey == "" {
		return "", ErrNotFound
	}
	return s.cfg.APIKey, nil
}

func (s *ConfigStore) Set(key string) error {
	s.cfg.APIKey = key
	s.cfg.CredentialStore = config.StoreConfig
	if err := s.cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (s *ConfigStore) Delete() error {
	return s.Set("")
}

// KeyringStore keeps the key in the system keyring. The config file only
// records that the keyring is in use.
type KeyringStore struct {
	cfg *config.Config
}

func (s *KeyringStore) Get() (string, error) {
	key, err := keyring.Get(service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read keyring: %w", err)
	}
	return key, nil
}

func (s *KeyringStore) Set(key string) error {
	if err := keyring.Set(service, user, key); err != nil {
		return fmt.Errorf("failed to write keyring: %w", err)
	}

	// Never leave a plaintext copy behind once the keyring holds the key
	s.cfg.APIKey = ""
	s.cfg.CredentialStore = config.StoreKeyring
	if err := s.cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func (s *KeyringStore) Delete() error {
	err := keyring.Delete(service, user)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

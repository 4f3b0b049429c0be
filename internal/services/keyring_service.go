package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/99designs/keyring"
)

const keyringServiceName = "aidocs"

// ErrAPIKeyMissing is returned when neither the keyring nor the environment holds a key.
var ErrAPIKeyMissing = errors.New("api key not configured")

// providerEnvKeys are consulted when the keyring has no entry for a provider.
var providerEnvKeys = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// APIKeyInfo describes a stored key without revealing it.
type APIKeyInfo struct {
	Provider    string `json:"provider"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

type KeyringService struct {
	ring   keyring.Keyring
	getenv func(string) string
}

// NewKeyringService wraps an opened keyring. getenv may be nil.
func NewKeyringService(ring keyring.Keyring, getenv func(string) string) *KeyringService {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &KeyringService{ring: ring, getenv: getenv}
}

// OpenKeyring opens the OS keyring, falling back to an encrypted file store
// under dir protected by AIDOCS_KEYRING_PASSWORD.
func OpenKeyring(dir string) (keyring.Keyring, error) {
	return keyring.Open(keyring.Config{
		ServiceName:      keyringServiceName,
		FileDir:          filepath.Join(dir, "keyring"),
		FilePasswordFunc: keyring.FixedStringPrompt(os.Getenv("AIDOCS_KEYRING_PASSWORD")),
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		},
	})
}

func (s *KeyringService) StoreApiKey(provider string, apiKey []byte) error {
	if len(apiKey) == 0 {
		return errors.New("API key is empty")
	}
	if provider == "" {
		return errors.New("provider is required")
	}
	if s.ring == nil {
		return errors.New("keyring is not available")
	}
	if err := s.ring.Set(keyring.Item{
		Key:         provider,
		Data:        apiKey,
		Label:       provider + " API key",
		Description: "API key for " + provider + " used by aidocs",
	}); err != nil {
		return fmt.Errorf("store %s key: %w", provider, err)
	}
	return nil
}

// GetApiKey returns the stored key for provider, then the provider's
// environment variable, and ErrAPIKeyMissing when neither is set.
func (s *KeyringService) GetApiKey(provider string) (string, error) {
	if provider == "" {
		return "", errors.New("provider is required")
	}
	if s.ring != nil {
		item, err := s.ring.Get(provider)
		switch {
		case err == nil && len(item.Data) > 0:
			return string(item.Data), nil
		case err != nil && !errors.Is(err, keyring.ErrKeyNotFound):
			return "", fmt.Errorf("read %s key: %w", provider, err)
		}
	}
	if env, ok := providerEnvKeys[provider]; ok {
		if v := strings.TrimSpace(s.getenv(env)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%s: %w", provider, ErrAPIKeyMissing)
}

func (s *KeyringService) DeleteApiKey(provider string) error {
	if provider == "" {
		return errors.New("provider is required")
	}
	if s.ring == nil {
		return errors.New("keyring is not available")
	}
	if err := s.ring.Remove(provider); err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return fmt.Errorf("%s: %w", provider, ErrAPIKeyMissing)
		}
		return fmt.Errorf("delete %s key: %w", provider, err)
	}
	return nil
}

// ListApiKeys lists providers with a key in the keyring or the environment.
func (s *KeyringService) ListApiKeys() ([]APIKeyInfo, error) {
	found := map[string]string{}
	if s.ring != nil {
		keys, err := s.ring.Keys()
		if err != nil {
			return nil, fmt.Errorf("list keyring: %w", err)
		}
		for _, k := range keys {
			found[k] = "keyring"
		}
	}
	for provider, env := range providerEnvKeys {
		if _, ok := found[provider]; ok {
			continue
		}
		if strings.TrimSpace(s.getenv(env)) != "" {
			found[provider] = "env:" + env
		}
	}

	results := make([]APIKeyInfo, 0, len(found))
	for provider, source := range found {
		results = append(results, APIKeyInfo{
			Provider:    provider,
			Label:       provider + " API key",
			Description: "API key for " + provider + " used by aidocs",
			Source:      source,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Provider < results[j].Provider })
	return results, nil
}

package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "mailkit"

var (
	// ErrUnsupportedStore is returned when no platform secret-store
	// backend is available. It is reported before any interactive
	// prompt occurs.
	ErrUnsupportedStore = errors.New("platform secret store unsupported")

	// ErrSecretNotFound is returned when no entry exists for a key.
	// Secret-store lookups are fail-fast; there are no retries.
	ErrSecretNotFound = errors.New("secret not found in keyring")
)

// Prompter obtains a secret interactively from the operator. Secrets
// are never accepted as plain function arguments, so they cannot leak
// through shell history or process listings; the prompt is the only
// way a password enters this package.
type Prompter interface {
	Secret(title string) (string, error)
}

// KeyStore reads and writes SMTP credentials in a keyring. Each entry
// is keyed by an Encode-produced identifier, with the account login
// name stored as the entry label and the password as the entry data.
type KeyStore struct {
	ring keyring.Keyring
}

// OpenKeyStore opens the platform keyring. It fails with
// ErrUnsupportedStore when no backend can be opened.
func OpenKeyStore() (*KeyStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/mailkit/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("mailkit-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedStore, err)
	}
	return &KeyStore{ring: ring}, nil
}

// NewKeyStore wraps an existing keyring. Tests use it with an
// in-memory array keyring.
func NewKeyStore(ring keyring.Keyring) *KeyStore {
	return &KeyStore{ring: ring}
}

// CreateKey prompts the operator for the account password and writes
// one keyring entry for id. It returns the identifier the entry was
// stored under.
func (s *KeyStore) CreateKey(p Prompter, id KeyID, username string) (string, error) {
	identifier, err := Encode(id)
	if err != nil {
		return "", err
	}

	title := fmt.Sprintf("Password for %s@%s", username, id.Host)
	if username == "" {
		title = fmt.Sprintf("Password for %s", id.Host)
	}
	secret, err := p.Secret(title)
	if err != nil {
		return "", fmt.Errorf("reading secret for key %q: %w", id.KeyName, err)
	}

	err = s.ring.Set(keyring.Item{
		Key:   identifier,
		Label: username,
		Data:  []byte(secret),
	})
	if err != nil {
		return "", fmt.Errorf("storing key %q: %w", id.KeyName, err)
	}

	return identifier, nil
}

// Retrieve returns the secret stored under identifier.
func (s *KeyStore) Retrieve(identifier string) (string, error) {
	item, err := s.ring.Get(identifier)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", fmt.Errorf("%w: %s", ErrSecretNotFound, identifier)
		}
		return "", fmt.Errorf("getting credential %q: %w", identifier, err)
	}
	return string(item.Data), nil
}

// ResolveKey finds the entry whose decoded key name matches keyName
// and returns its metadata, stored username, and secret.
func (s *KeyStore) ResolveKey(keyName string) (KeyID, string, string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return KeyID{}, "", "", fmt.Errorf("listing keyring entries: %w", err)
	}

	for _, key := range keys {
		id, err := decodeVersion(key, CurrentVersion)
		if err != nil || id.KeyName != keyName {
			continue
		}

		item, err := s.ring.Get(key)
		if err != nil {
			return KeyID{}, "", "", fmt.Errorf("getting credential %q: %w", keyName, err)
		}
		return id, item.Label, string(item.Data), nil
	}

	return KeyID{}, "", "", fmt.Errorf("%w: no key named %q", ErrSecretNotFound, keyName)
}

// ListKeys decodes every entry written under the given identifier
// layout version, in keyring order. Entries that do not match the
// version's namespace or segment layout are skipped, so stray or
// manually created entries never break a listing.
func (s *KeyStore) ListKeys(version int) ([]KeyID, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, fmt.Errorf("listing keyring entries: %w", err)
	}

	var ids []KeyID
	for _, key := range keys {
		id, err := decodeVersion(key, version)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DeleteKey removes the entry whose decoded key name matches keyName.
func (s *KeyStore) DeleteKey(keyName string) error {
	keys, err := s.ring.Keys()
	if err != nil {
		return fmt.Errorf("listing keyring entries: %w", err)
	}

	for _, key := range keys {
		id, err := decodeVersion(key, CurrentVersion)
		if err != nil || id.KeyName != keyName {
			continue
		}
		if err := s.ring.Remove(key); err != nil {
			return fmt.Errorf("deleting key %q: %w", keyName, err)
		}
		return nil
	}

	return fmt.Errorf("%w: no key named %q", ErrSecretNotFound, keyName)
}

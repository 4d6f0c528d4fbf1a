// Package auth stores per-user credentials encrypted at rest.
//
// Credentials are sealed with AES-256-GCM under a machine-local key
// generated on first use. The key file and credential files are written
// with owner-only permissions.
package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"qacraft/internal/domain"
)

const keyFileName = "credentials.key"

// Store encrypts and persists one credentials file per user id.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore returns a credential store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// UserID derives the store key from the configured name, lowercased and
// joined with an underscore.
func UserID(firstName, lastName string) string {
	first := strings.ToLower(strings.TrimSpace(firstName))
	last := strings.ToLower(strings.TrimSpace(lastName))
	if first == "" && last == "" {
		return "default"
	}
	if last == "" {
		return first
	}
	if first == "" {
		return last
	}
	return first + "_" + last
}

// Load decrypts the credentials for a user. A missing file yields empty
// credentials, not an error; the caller decides whether empty is fatal.
func (s *Store) Load(user string) (domain.Credentials, error) {
	data, err := os.ReadFile(s.credsPath(user))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Credentials{}, nil
		}
		return domain.Credentials{}, err
	}

	key, err := s.loadOrCreateKey()
	if err != nil {
		return domain.Credentials{}, err
	}
	plaintext, err := decrypt(key, data)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("decrypt credentials for %s: %w", user, err)
	}

	var creds domain.Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return domain.Credentials{}, fmt.Errorf("decode credentials for %s: %w", user, err)
	}
	return creds, nil
}

// Save encrypts and writes the credentials for a user, replacing any
// previous file.
func (s *Store) Save(user string, creds domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	key, err := s.loadOrCreateKey()
	if err != nil {
		return err
	}
	plaintext, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	sealed, err := encrypt(key, plaintext)
	if err != nil {
		return err
	}
	return os.WriteFile(s.credsPath(user), sealed, 0o600)
}

func (s *Store) credsPath(user string) string {
	return filepath.Join(s.dir, user+"_credentials.json")
}

// loadOrCreateKey reads the machine key, generating a fresh 32-byte key on
// first use.
func (s *Store) loadOrCreateKey() ([]byte, error) {
	path := filepath.Join(s.dir, keyFileName)
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != 32 {
			return nil, fmt.Errorf("key file %s has unexpected length %d", path, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}

// encrypt seals plaintext with AES-GCM, prepending the nonce.
func encrypt(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(key, sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("ciphertext shorter than nonce")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

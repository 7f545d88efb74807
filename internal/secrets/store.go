// Package secrets keeps the backend API token out of the config file. The OS
// keyring is preferred; when it is unavailable the token lands in a per-user
// file (0600) with AES-GCM obfuscation.
package secrets

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/zalando/go-keyring"
)

// ErrNotFound means no token is stored for the account.
var ErrNotFound = errors.New("secrets: token not found")

const (
	service  = "baydesk"
	fileName = "keys.json"
)

type secretFile struct {
	Tokens map[string]string `json:"tokens"` // account -> base64(ciphertext)
}

// Store reads and writes API tokens.
type Store struct {
	// Dir holds the fallback file. Empty means <user config dir>/baydesk.
	Dir string
}

// StoreToken saves token for account, in the keyring when possible.
func (s Store) StoreToken(account, token string) error {
	if account = norm(account); account == "" {
		return fmt.Errorf("secrets: account required")
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("secrets: empty token")
	}
	if err := keyring.Set(service, account, token); err == nil {
		_ = s.deleteFile(account)
		return nil
	}
	return s.storeFile(account, token)
}

// FetchToken returns the token for account from the keyring or the fallback file.
func (s Store) FetchToken(account string) (string, error) {
	if account = norm(account); account == "" {
		return "", fmt.Errorf("secrets: account required")
	}
	if tok, err := keyring.Get(service, account); err == nil {
		return tok, nil
	}
	return s.fetchFile(account)
}

// DeleteToken removes the token for account from both locations.
func (s Store) DeleteToken(account string) error {
	if account = norm(account); account == "" {
		return fmt.Errorf("secrets: account required")
	}
	// absent entry or unavailable keyring both leave the file as the only copy
	_ = keyring.Delete(service, account)
	return s.deleteFile(account)
}

// Provider resolves the bearer token on every call with precedence:
// env var envName, then the stored token for account, then configToken.
// An empty result means unauthenticated.
func (s Store) Provider(envName, configToken, account string) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if envName != "" {
			if tok := strings.TrimSpace(os.Getenv(envName)); tok != "" {
				return tok, nil
			}
		}
		if account != "" {
			tok, err := s.FetchToken(account)
			switch {
			case err == nil:
				return tok, nil
			case !errors.Is(err, ErrNotFound):
				return "", err
			}
		}
		return strings.TrimSpace(configToken), nil
	}
}

func (s Store) storeFile(account, token string) error {
	path, err := s.filePath()
	if err != nil {
		return err
	}
	sf, err := load(path)
	if err != nil {
		return err
	}
	if sf.Tokens == nil {
		sf.Tokens = map[string]string{}
	}
	ct, err := encrypt([]byte(token))
	if err != nil {
		return err
	}
	sf.Tokens[account] = base64.StdEncoding.EncodeToString(ct)
	return save(path, sf)
}

func (s Store) fetchFile(account string) (string, error) {
	path, err := s.filePath()
	if err != nil {
		return "", err
	}
	sf, err := load(path)
	if err != nil {
		return "", err
	}
	enc, ok := sf.Tokens[account]
	if !ok {
		return "", ErrNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("secrets: decode %s: %w", account, err)
	}
	pt, err := decrypt(raw)
	if err != nil {
		return "", fmt.Errorf("secrets: decrypt %s: %w", account, err)
	}
	return string(pt), nil
}

func (s Store) deleteFile(account string) error {
	path, err := s.filePath()
	if err != nil {
		return err
	}
	sf, err := load(path)
	if err != nil {
		return err
	}
	if _, ok := sf.Tokens[account]; !ok {
		return nil
	}
	delete(sf.Tokens, account)
	return save(path, sf)
}

func (s Store) filePath() (string, error) {
	dir := s.Dir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "baydesk")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

func load(path string) (secretFile, error) {
	var sf secretFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return secretFile{}, nil
		}
		return sf, err
	}
	if err := json.Unmarshal(data, &sf); err != nil {
		return sf, err
	}
	return sf, nil
}

func save(path string, sf secretFile) error {
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func masterKey() []byte {
	base := fmt.Sprintf("baydesk-%s-%s", runtime.GOOS, os.Getenv("USER"))
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBcryptCost = 12
	apiKeyBytes       = 24
)

// HashAPIKey returns the bcrypt hash stored in API_KEY_HASH.
func HashAPIKey(key string) (string, error) {
	return hashAPIKeyWithCost(key, DefaultBcryptCost)
}

func hashAPIKeyWithCost(key string, cost int) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", fmt.Errorf("api key is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(trimmed), cost)
	if err != nil {
		return "", fmt.Errorf("hash api key: %w", err)
	}
	return string(hash), nil
}

func VerifyAPIKey(key, hash string) bool {
	trimmedKey := strings.TrimSpace(key)
	trimmedHash := strings.TrimSpace(hash)
	if trimmedKey == "" || trimmedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(trimmedHash), []byte(trimmedKey)) == nil
}

// GenerateAPIKey returns a random hex key.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// KeyVerifier checks API keys against one bcrypt hash and remembers the
// digest of the last accepted key so repeat requests skip bcrypt.
type KeyVerifier struct {
	hash string

	mu       sync.Mutex
	accepted []byte
}

func NewKeyVerifier(hash string) *KeyVerifier {
	return &KeyVerifier{hash: strings.TrimSpace(hash)}
}

// Enabled reports whether a hash is configured.
func (v *KeyVerifier) Enabled() bool {
	return v != nil && v.hash != ""
}

func (v *KeyVerifier) Verify(key string) bool {
	if !v.Enabled() {
		return false
	}
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return false
	}
	digest := sha256.Sum256([]byte(trimmed))

	v.mu.Lock()
	cached := v.accepted
	v.mu.Unlock()
	if cached != nil && subtle.ConstantTimeCompare(cached, digest[:]) == 1 {
		return true
	}

	if !VerifyAPIKey(trimmed, v.hash) {
		return false
	}

	v.mu.Lock()
	v.accepted = digest[:]
	v.mu.Unlock()
	return true
}

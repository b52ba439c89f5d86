package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
)

// KeyPrefix starts every key produced by DefaultKeyer.
const KeyPrefix = "cache:"

// Keyer derives a cache key from a request.
//
// Contract:
// - Determinism: equivalent requests must produce the same key regardless
//   of query parameter order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Key(r *http.Request) (string, error)
}

// DefaultKeyer keys requests by path and canonical query.
type DefaultKeyer struct{}

// Key returns cache:<path>:<hash>, where hash is the first 16 hex digits
// of SHA-256 over the sorted, encoded query.
func (DefaultKeyer) Key(r *http.Request) (string, error) {
	sum := sha256.Sum256([]byte(r.URL.Query().Encode()))
	key := PathPrefix(r.URL.Path) + hex.EncodeToString(sum[:8])
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// PathPrefix returns the key prefix shared by every cached variant of path.
func PathPrefix(path string) string {
	return KeyPrefix + path + ":"
}

var _ Keyer = DefaultKeyer{}

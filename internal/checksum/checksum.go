// Package checksum fingerprints serialized blobs.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag returns a strong HTTP entity tag for data.
func ETag(data []byte) string {
	return `"` + Sum(data)[:32] + `"`
}

// Tracker remembers the digest last written under each key so callers can
// skip rewriting identical content.
type Tracker struct {
	mu   sync.Mutex
	sums map[string]string
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{sums: make(map[string]string)}
}

// Unchanged reports whether data hashes to the digest recorded for key.
// It also returns the digest so a successful write can Record it.
func (t *Tracker) Unchanged(key string, data []byte) (bool, string) {
	sum := Sum(data)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sums[key] == sum, sum
}

// Record stores sum as the current digest of key.
func (t *Tracker) Record(key, sum string) {
	t.mu.Lock()
	t.sums[key] = sum
	t.mu.Unlock()
}

// Forget drops the digest of key, forcing the next write through.
func (t *Tracker) Forget(key string) {
	t.mu.Lock()
	delete(t.sums, key)
	t.mu.Unlock()
}

// Package storage defines the local key-value medium the CRM persists into.
package storage

import (
	"fmt"
	"regexp"
)

// Provider is the interface for key-value blob operations.
type Provider interface {
	// Get returns the value stored under key, or an error matching apperr.ErrNotFound.
	Get(key string) ([]byte, error)
	// Put atomically replaces the value stored under key.
	Put(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys lists stored keys starting with prefix, sorted.
	Keys(prefix string) ([]string, error)
	// Close releases the medium.
	Close() error
}

var keyRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

// checkKey rejects keys that could escape a directory or be ambiguous on disk.
func checkKey(key string) error {
	if !keyRe.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}

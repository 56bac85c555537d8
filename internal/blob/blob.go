// Package blob provides key-value stores holding whole string payloads.
// A Set always replaces the full value for its key.
package blob

import "errors"

// Store is the get/set contract the analysis store persists through.
type Store interface {
	// Get returns the last value written for key. ok is false when the key
	// has never been written.
	Get(key string) (value string, ok bool, err error)
	// Set overwrites the value for key.
	Set(key, value string) error
}

// ErrInvalidKey is returned for keys that cannot be stored.
var ErrInvalidKey = errors.New("invalid blob key")

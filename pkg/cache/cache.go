// Package cache provides a durable response cache for model completions and
// text embeddings, keyed by the exact (namespace, model, input) tuple.
package cache

import (
	"crypto/sha256"
)

// Namespace isolates cache entries that follow the same protocol but must
// never collide.
type Namespace string

// Cache namespaces. Completions and embeddings are cached independently.
const (
	NamespaceCompletion Namespace = "completion"
	NamespaceEmbedding  Namespace = "embedding"
)

// Store is a durable key-value cache. Entries are append-only: there is no
// eviction and no expiry. Writes must be visible to subsequent reads within
// the same process.
type Store interface {
	// Get returns the cached value for the exact (namespace, model, input)
	// tuple, reporting whether an entry exists.
	Get(ns Namespace, model, input string) ([]byte, bool, error)
	// Put stores value under the exact (namespace, model, input) tuple.
	Put(ns Namespace, model, input string, value []byte) error
	// Contains reports whether an entry exists without reading its value.
	Contains(ns Namespace, model, input string) (bool, error)
	// Close releases the underlying storage.
	Close() error
}

// buildKey derives the storage key from the exact tuple contents. The input
// is hashed so arbitrarily large prompts produce fixed-size keys while any
// content difference, including whitespace, remains a distinct key.
func buildKey(ns Namespace, model, input string) []byte {
	sum := sha256.Sum256([]byte(input))

	key := make([]byte, 0, len(ns)+len(model)+sha256.Size+2)
	key = append(key, ns...)
	key = append(key, 0)
	key = append(key, model...)
	key = append(key, 0)
	key = append(key, sum[:]...)
	return key
}

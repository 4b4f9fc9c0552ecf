package driven

import "context"

// CacheStore is a persisted key-value store scoped by namespace.
// The sync engine uses one namespace per source.
type CacheStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if the key is absent.
	Get(ctx context.Context, namespace, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, namespace, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, namespace, key string) error
}

package ports

import "context"

// KeyValueStore is the durable local store shared by the session and
// configuration stores. Writes are last-writer-wins per key; the two owners
// write disjoint keys, so no cross-key coordination is provided.
type KeyValueStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

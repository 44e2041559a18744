package driven

import "context"

// ArchiveStore persists processed artefacts (the parsed submission
// JSON) after successful indexing. Object storage in production, a
// local directory in tests and offline runs.
type ArchiveStore interface {
	// Put stores data under the given key and returns the stored
	// object's URI.
	Put(ctx context.Context, key string, data []byte) (string, error)

	// Get retrieves a stored object by key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether an object is stored under the key.
	Exists(ctx context.Context, key string) (bool, error)
}

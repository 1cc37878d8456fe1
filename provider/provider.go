// Package provider defines the byte stores a zipcache delegate can sit on.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation).
//
// Important: keys under the delegate's KeyPrefix are owned by zipcache. Foreign
// writes there fail envelope validation and are deleted.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. May ignore cost if unsupported.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// BulkGetter is implemented by stores that can fetch many keys in one round trip.
// Missing keys are absent from the result.
type BulkGetter interface {
	GetMany(ctx context.Context, keys []string) (map[string][]byte, error)
}

// PrefixDeleter is implemented by stores that can drop every key starting with
// prefix. Deletion is best-effort; keys written concurrently may survive.
type PrefixDeleter interface {
	DelPrefix(ctx context.Context, prefix string) (int, error)
}

// Remote is implemented by stores that live outside the process.
type Remote interface {
	Remote() bool
}

// IsRemote reports whether p declares itself out of process.
func IsRemote(p Provider) bool {
	r, ok := p.(Remote)
	return ok && r.Remote()
}

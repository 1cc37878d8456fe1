package zipcache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/zipcache/compress"
	"github.com/unkn0wn-root/zipcache/executor"
)

// Cache is the byte-cache contract. The local engine returned by New implements it,
// and so does anything that can serve as its delegate (see the delegate package).
type Cache interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	Get(ctx context.Context, key Key) ([]byte, bool, error)

	// Put stores value under key. value must not be nil.
	Put(ctx context.Context, key Key, value []byte) error

	// GetBulk returns only the keys that are present. The map is fully materialized.
	GetBulk(ctx context.Context, keys []Key) (map[Key][]byte, error)

	// InvalidateNamespace drops entries of namespace on a best-effort basis:
	// entries written concurrently with or just after the call may survive.
	InvalidateNamespace(ctx context.Context, namespace string) error

	Stats() Stats

	// IsLocal reports whether the cache lives in this process.
	IsLocal() bool

	// Close releases resources.
	Close(ctx context.Context) error
}

// Options configure the local engine. The zero value is a valid unbounded cache.
type Options struct {
	// Expiring turns on access expiry: entries not read or written for
	// Expiration are dropped. An Expiration of 0 expires entries at once.
	Expiring   bool
	Expiration time.Duration
	// Weighted turns on weighing: the summed entry weight is kept at or below
	// MaxWeight, so 0 keeps nothing. Unweighted caches report Stats.SizeBytes as -1.
	Weighted  bool
	MaxWeight int64
	// EvictOnClose makes InvalidateNamespace remove matching entries instead of
	// leaving them to eviction.
	EvictOnClose bool

	// Executor runs maintenance. nil => a single-thread executor owned by the cache.
	Executor executor.Executor
	// Compressor used for stored payloads. nil => LZ4.
	Compressor compress.Compressor
	// Delegate is consulted on local misses and kept in sync on writes. Optional.
	Delegate Cache

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks

	Shards        int           // 0 => 16
	SweepInterval time.Duration // 0 => Expiration clamped to [100ms, 1m]
	// Now overrides the clock, mainly for tests. nil => time.Now.
	Now func() time.Time
}

// New builds the local engine.
func New(opts Options) (*Local, error) {
	return newLocal(opts)
}

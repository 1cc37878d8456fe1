package zipcache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/zipcache/compress"
	"github.com/unkn0wn-root/zipcache/executor"
	"github.com/unkn0wn-root/zipcache/internal/store"
)

// Local is the in-process engine. Values are held compressed; every Get
// decompresses on the calling goroutine.
type Local struct {
	store        *store.Store[Key]
	codec        *compress.Codec
	delegate     Cache
	hasDelegate  bool
	evictOnClose bool
	log          Logger
	hooks        Hooks
	now          func() time.Time
	ownedExec    *executor.Pool

	hits      atomic.Int64
	misses    atomic.Int64
	loadOK    atomic.Int64
	loadFail  atomic.Int64
	loadNanos atomic.Int64
	errs      atomic.Int64

	closeOnce sync.Once
}

var _ Cache = (*Local)(nil)

func newLocal(opts Options) (*Local, error) {
	if opts.Shards < 0 {
		return nil, &ConfigError{Field: "shards", Reason: "must not be negative"}
	}
	if opts.Weighted && opts.MaxWeight < 0 {
		return nil, &ConfigError{Field: "maxWeight", Reason: "must not be negative"}
	}
	if opts.Expiring && opts.Expiration < 0 {
		return nil, &ConfigError{Field: "expiration", Reason: "must not be negative"}
	}

	c := &Local{
		evictOnClose: opts.EvictOnClose,
		log:          coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:        coalesce[Hooks](opts.Hooks, NopHooks{}),
		now:          opts.Now,
	}
	if c.now == nil {
		c.now = time.Now
	}

	if opts.Delegate != nil {
		c.delegate = opts.Delegate
		c.hasDelegate = true
	} else {
		c.delegate = noDelegate{}
	}

	exec := opts.Executor
	if exec == nil {
		c.ownedExec = executor.NewSingleThread(0)
		exec = c.ownedExec
	}

	c.codec = compress.NewCodec(opts.Compressor, c.onMismatch)
	c.store = store.New(store.Config[Key]{
		Weighted:          opts.Weighted,
		MaxWeight:         opts.MaxWeight,
		Expiring:          opts.Expiring,
		ExpireAfterAccess: opts.Expiration,
		Weigher:           func(k Key, v []byte) int64 { return EntryWeight(k, len(v)) },
		Executor:          exec,
		Now:               func() int64 { return c.now().UnixNano() },
		OnEvict:           c.onEvict,
		Shards:            opts.Shards,
		SweepInterval:     sweepInterval(opts),
	})
	return c, nil
}

func (c *Local) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	if raw, ok := c.store.Get(key); ok {
		c.hits.Add(1)
		v, err := c.codec.Deserialize(raw)
		if err != nil {
			c.errs.Add(1)
			return nil, false, fmt.Errorf("zipcache: get %s: %w", key, err)
		}
		return v, true, nil
	}
	c.misses.Add(1)
	return c.load(ctx, key)
}

func (c *Local) Put(ctx context.Context, key Key, value []byte) error {
	if value == nil {
		return ErrNilValue
	}
	if err := c.admit(key, value); err != nil {
		return err
	}
	c.forward("put", key.Namespace(), func() error { return c.delegate.Put(ctx, key, value) })
	return nil
}

// GetBulk decompresses every hit exactly once before returning; misses go to the
// delegate in a single GetBulk call.
func (c *Local) GetBulk(ctx context.Context, keys []Key) (map[Key][]byte, error) {
	present := c.store.GetAllPresent(keys)
	out := make(map[Key][]byte, len(present))
	for k, raw := range present {
		v, err := c.codec.Deserialize(raw)
		if err != nil {
			c.errs.Add(1)
			return nil, fmt.Errorf("zipcache: get bulk %s: %w", k, err)
		}
		out[k] = v
	}
	c.hits.Add(int64(len(present)))

	var missing []Key
	seen := make(map[Key]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := present[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}
	c.misses.Add(int64(len(missing)))
	if err := c.loadBulk(ctx, missing, out); err != nil {
		return nil, err
	}
	return out, nil
}

// InvalidateNamespace is racy with concurrent Puts by contract. Without
// EvictOnClose nothing is removed locally.
func (c *Local) InvalidateNamespace(ctx context.Context, namespace string) error {
	if c.evictOnClose {
		n := c.store.InvalidateIf(func(k Key) bool { return k.namespace == namespace })
		c.store.CleanUp()
		if n > 0 {
			c.log.Info("namespace purged", Fields{"namespace": namespace, "removed": n})
		}
	}
	c.forward("invalidate", namespace, func() error { return c.delegate.InvalidateNamespace(ctx, namespace) })
	return nil
}

func (c *Local) Stats() Stats {
	size := int64(-1)
	if c.store.Weighted() {
		size = c.store.WeightedSize()
	}
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Entries:       c.store.Len(),
		SizeBytes:     size,
		Evictions:     c.store.Evictions(),
		EvictionBytes: c.store.EvictionWeight(),
		LoadSuccesses: c.loadOK.Load(),
		LoadFailures:  c.loadFail.Load(),
		TotalLoadTime: time.Duration(c.loadNanos.Load()),
		Errors:        c.errs.Load(),
	}
}

func (c *Local) IsLocal() bool { return true }

// CleanUp runs pending maintenance now instead of waiting for the executor.
func (c *Local) CleanUp() { c.store.CleanUp() }

// Close stops background work and closes the delegate. The cache keeps serving
// reads and writes afterwards, with maintenance running inline.
func (c *Local) Close(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		c.store.Close()
		if c.ownedExec != nil {
			c.ownedExec.Close()
		}
		if c.hasDelegate {
			if derr := c.delegate.Close(ctx); derr != nil {
				c.hooks.DelegateWriteFailed("close", "", derr)
				err = fmt.Errorf("zipcache: close delegate: %w", derr)
			}
		}
	})
	return err
}

func (c *Local) admit(key Key, value []byte) error {
	framed, err := c.codec.Serialize(value)
	if err != nil {
		c.errs.Add(1)
		return fmt.Errorf("zipcache: put %s: %w", key, err)
	}
	c.store.Put(key, framed)
	return nil
}

func (c *Local) onEvict(k Key, _ []byte, weight int64, cause store.Cause) {
	c.hooks.Evicted(k.namespace, weight, cause.String())
}

func (c *Local) onMismatch(want, got int) {
	c.log.Debug("decoded length differs from prefix", Fields{"compressor": c.codec.Compressor().Name(), "want": want, "got": got})
	c.hooks.LengthMismatch(want, got)
}

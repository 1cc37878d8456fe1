// Package delegate adapts a provider.Provider into a zipcache.Cache, so a local
// cache can read through to, and write through to, a shared byte store.
//
// Each value is stored in a wire envelope that records the namespace, key and
// namespace generation it was written under. Envelopes that fail validation are
// deleted and reported as misses.
//
// Namespace invalidation deletes by prefix when the provider supports it.
// Otherwise the namespace generation kept in the provider is bumped, which turns
// every older envelope into a miss. Both forms are best-effort.
package delegate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/zipcache"
	"github.com/unkn0wn-root/zipcache/internal/util"
	"github.com/unkn0wn-root/zipcache/internal/wire"
	"github.com/unkn0wn-root/zipcache/provider"
)

var ErrNilProvider = errors.New("delegate: nil provider")

const DefaultKeyPrefix = "zipcache"

type Options struct {
	Provider provider.Provider
	// TTL for stored entries. <= 0 => no expiry (provider permitting).
	TTL time.Duration
	// KeyPrefix scopes every storage key. "" => DefaultKeyPrefix.
	KeyPrefix string
	Logger    zipcache.Logger
}

// Cache is a zipcache.Cache backed by a provider.
type Cache struct {
	p      provider.Provider
	bulk   provider.BulkGetter
	purge  provider.PrefixDeleter
	ttl    time.Duration
	prefix string
	log    zipcache.Logger

	hits     atomic.Int64
	misses   atomic.Int64
	errs     atomic.Int64
	rejected atomic.Int64
	closed   atomic.Bool
}

var _ zipcache.Cache = (*Cache)(nil)

func New(opts Options) (*Cache, error) {
	if opts.Provider == nil {
		return nil, ErrNilProvider
	}
	c := &Cache{
		p:      opts.Provider,
		ttl:    opts.TTL,
		prefix: opts.KeyPrefix,
		log:    opts.Logger,
	}
	if c.prefix == "" {
		c.prefix = DefaultKeyPrefix
	}
	if c.log == nil {
		c.log = zipcache.NopLogger{}
	}
	if bg, ok := opts.Provider.(provider.BulkGetter); ok {
		c.bulk = bg
	}
	if pd, ok := opts.Provider.(provider.PrefixDeleter); ok {
		c.purge = pd
	}
	return c, nil
}

func (c *Cache) Get(ctx context.Context, key zipcache.Key) ([]byte, bool, error) {
	if c.closed.Load() {
		return nil, false, zipcache.ErrClosed
	}
	gen, err := c.generation(ctx, key.Namespace())
	if err != nil {
		return nil, false, err
	}
	sk := c.storageKey(key)
	b, ok, err := c.p.Get(ctx, sk)
	if err != nil {
		c.errs.Add(1)
		return nil, false, fmt.Errorf("delegate: get %s: %w", key, err)
	}
	if !ok {
		c.misses.Add(1)
		return nil, false, nil
	}
	v, ok := c.open(ctx, sk, key, gen, b)
	if !ok {
		c.misses.Add(1)
		return nil, false, nil
	}
	c.hits.Add(1)
	return v, true, nil
}

func (c *Cache) Put(ctx context.Context, key zipcache.Key, value []byte) error {
	if c.closed.Load() {
		return zipcache.ErrClosed
	}
	if value == nil {
		return zipcache.ErrNilValue
	}
	gen, err := c.generation(ctx, key.Namespace())
	if err != nil {
		return err
	}
	env, err := wire.EncodeEntry(wire.Entry{
		Gen:       gen,
		Namespace: key.Namespace(),
		Key:       key.Bytes(),
		Payload:   value,
	})
	if err != nil {
		return fmt.Errorf("delegate: encode %s: %w", key, err)
	}
	ok, err := c.p.Set(ctx, c.storageKey(key), env, int64(len(env)), c.ttl)
	if err != nil {
		c.errs.Add(1)
		return fmt.Errorf("delegate: put %s: %w", key, err)
	}
	if !ok {
		c.rejected.Add(1)
		c.log.Debug("provider rejected write", zipcache.Fields{"key": key.String(), "size": len(env)})
	}
	return nil
}

// GetBulk uses one provider round trip when the provider is a BulkGetter and
// falls back to per-key reads otherwise.
func (c *Cache) GetBulk(ctx context.Context, keys []zipcache.Key) (map[zipcache.Key][]byte, error) {
	if c.closed.Load() {
		return nil, zipcache.ErrClosed
	}
	out := make(map[zipcache.Key][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	gens := make(map[string]uint64)
	byStorage := make(map[string]zipcache.Key, len(keys))
	sks := make([]string, 0, len(keys))
	for _, k := range keys {
		ns := k.Namespace()
		if _, ok := gens[ns]; !ok {
			g, err := c.generation(ctx, ns)
			if err != nil {
				return nil, err
			}
			gens[ns] = g
		}
		sk := c.storageKey(k)
		if _, dup := byStorage[sk]; dup {
			continue
		}
		byStorage[sk] = k
		sks = append(sks, sk)
	}

	raw, err := c.fetch(ctx, sks)
	if err != nil {
		c.errs.Add(1)
		return nil, fmt.Errorf("delegate: get bulk: %w", err)
	}
	for _, sk := range sks {
		k := byStorage[sk]
		b, ok := raw[sk]
		if !ok {
			c.misses.Add(1)
			continue
		}
		v, ok := c.open(ctx, sk, k, gens[k.Namespace()], b)
		if !ok {
			c.misses.Add(1)
			continue
		}
		c.hits.Add(1)
		out[k] = v
	}
	return out, nil
}

func (c *Cache) InvalidateNamespace(ctx context.Context, namespace string) error {
	if c.closed.Load() {
		return zipcache.ErrClosed
	}
	if c.purge != nil {
		n, err := c.purge.DelPrefix(ctx, util.NamespacePrefix(c.prefix, namespace))
		if err != nil {
			c.errs.Add(1)
			return fmt.Errorf("delegate: purge %q: %w", namespace, err)
		}
		c.log.Info("namespace purged", zipcache.Fields{"namespace": namespace, "removed": n})
		return nil
	}
	return c.bumpGeneration(ctx, namespace)
}

// Stats reports this delegate's own traffic. Size is unknown and reported as -1.
func (c *Cache) Stats() zipcache.Stats {
	return zipcache.Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		SizeBytes: -1,
		Errors:    c.errs.Load(),
	}
}

// Rejected counts writes the provider declined under pressure.
func (c *Cache) Rejected() int64 { return c.rejected.Load() }

func (c *Cache) IsLocal() bool { return !provider.IsRemote(c.p) }

// Close closes the provider. Safe to call multiple times.
func (c *Cache) Close(ctx context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.p.Close(ctx)
}

func (c *Cache) storageKey(k zipcache.Key) string {
	return util.EntryKey(c.prefix, k.Namespace(), k.Bytes())
}

func (c *Cache) fetch(ctx context.Context, sks []string) (map[string][]byte, error) {
	if c.bulk != nil {
		return c.bulk.GetMany(ctx, sks)
	}
	out := make(map[string][]byte, len(sks))
	for _, sk := range sks {
		b, ok, err := c.p.Get(ctx, sk)
		if err != nil {
			return nil, err
		}
		if ok {
			out[sk] = b
		}
	}
	return out, nil
}

// open validates an envelope read from sk. Corrupt, foreign or stale envelopes
// are deleted so the next write starts clean.
func (c *Cache) open(ctx context.Context, sk string, key zipcache.Key, gen uint64, b []byte) ([]byte, bool) {
	e, err := wire.DecodeEntry(b)
	switch {
	case err != nil:
		c.errs.Add(1)
		c.log.Warn("corrupt delegate entry; deleting", zipcache.Fields{"key": key.String(), "err": err})
	case e.Namespace != key.Namespace() || !bytes.Equal(e.Key, key.Bytes()):
		c.errs.Add(1)
		c.log.Warn("delegate entry identity mismatch; deleting", zipcache.Fields{"key": key.String()})
	case e.Gen != gen:
		c.log.Debug("stale delegate entry; deleting", zipcache.Fields{"key": key.String(), "gen": e.Gen, "want": gen})
	default:
		return bytes.Clone(e.Payload), true
	}
	_ = c.p.Del(ctx, sk)
	return nil, false
}

func (c *Cache) generation(ctx context.Context, namespace string) (uint64, error) {
	if c.purge != nil {
		return 0, nil
	}
	b, ok, err := c.p.Get(ctx, util.GenKey(c.prefix, namespace))
	if err != nil {
		c.errs.Add(1)
		return 0, fmt.Errorf("delegate: read generation %q: %w", namespace, err)
	}
	if !ok {
		return 0, nil
	}
	g, err := wire.DecodeGen(b)
	if err != nil {
		// an unreadable generation restarts at zero; older entries still mismatch
		// unless they were written at zero too
		c.log.Warn("corrupt namespace generation", zipcache.Fields{"namespace": namespace})
		return 0, nil
	}
	return g, nil
}

// bumpGeneration is a read-modify-write; two concurrent bumps may collapse into
// one, which still invalidates everything written before either.
func (c *Cache) bumpGeneration(ctx context.Context, namespace string) error {
	g, err := c.generation(ctx, namespace)
	if err != nil {
		return err
	}
	ok, err := c.p.Set(ctx, util.GenKey(c.prefix, namespace), wire.EncodeGen(g+1), 16, 0)
	if err != nil {
		c.errs.Add(1)
		return fmt.Errorf("delegate: bump generation %q: %w", namespace, err)
	}
	if !ok {
		c.rejected.Add(1)
		return fmt.Errorf("delegate: bump generation %q: write rejected", namespace)
	}
	c.log.Info("namespace generation bumped", zipcache.Fields{"namespace": namespace, "gen": g + 1})
	return nil
}

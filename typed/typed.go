// Package typed binds a zipcache.Cache to one namespace and one value type.
//
//	users := typed.New(cache, "users", codec.Msgpack[User]{})
//	_ = users.Put(ctx, "u:1", u)
//	u, ok, err := users.Get(ctx, "u:1")
package typed

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/zipcache"
	"github.com/unkn0wn-root/zipcache/codec"
)

type Cache[V any] struct {
	c     zipcache.Cache
	ns    string
	codec codec.Codec[V]
}

func New[V any](c zipcache.Cache, namespace string, cd codec.Codec[V]) *Cache[V] {
	return &Cache[V]{c: c, ns: namespace, codec: cd}
}

func (t *Cache[V]) Namespace() string { return t.ns }

func (t *Cache[V]) key(k string) zipcache.Key { return zipcache.NewKey(t.ns, []byte(k)) }

// Get decodes the stored value. A payload that fails to decode is an error, not
// a miss: it usually means two writers disagree on the type of a namespace.
func (t *Cache[V]) Get(ctx context.Context, k string) (V, bool, error) {
	var zero V
	b, ok, err := t.c.Get(ctx, t.key(k))
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := t.codec.Decode(b)
	if err != nil {
		return zero, false, fmt.Errorf("typed: decode %s/%s: %w", t.ns, k, err)
	}
	return v, true, nil
}

func (t *Cache[V]) Put(ctx context.Context, k string, v V) error {
	b, err := t.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("typed: encode %s/%s: %w", t.ns, k, err)
	}
	return t.c.Put(ctx, t.key(k), b)
}

// GetBulk returns the present keys only. Entries that fail to decode abort the
// whole call.
func (t *Cache[V]) GetBulk(ctx context.Context, keys []string) (map[string]V, error) {
	ks := make([]zipcache.Key, len(keys))
	for i, k := range keys {
		ks[i] = t.key(k)
	}
	raw, err := t.c.GetBulk(ctx, ks)
	if err != nil {
		return nil, err
	}
	out := make(map[string]V, len(raw))
	for k, b := range raw {
		v, err := t.codec.Decode(b)
		if err != nil {
			return nil, fmt.Errorf("typed: decode %s/%s: %w", t.ns, k.Bytes(), err)
		}
		out[string(k.Bytes())] = v
	}
	return out, nil
}

// Invalidate drops the whole namespace, best-effort.
func (t *Cache[V]) Invalidate(ctx context.Context) error {
	return t.c.InvalidateNamespace(ctx, t.ns)
}

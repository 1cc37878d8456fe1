package zipcache

import (
	"context"
	"time"
)

// noDelegate stands in when Options.Delegate is nil: every call is a no-op.
type noDelegate struct{}

var _ Cache = noDelegate{}

func (noDelegate) Get(context.Context, Key) ([]byte, bool, error) { return nil, false, nil }
func (noDelegate) Put(context.Context, Key, []byte) error         { return nil }
func (noDelegate) GetBulk(context.Context, []Key) (map[Key][]byte, error) {
	return map[Key][]byte{}, nil
}
func (noDelegate) InvalidateNamespace(context.Context, string) error { return nil }
func (noDelegate) Stats() Stats                                      { return Stats{SizeBytes: -1} }
func (noDelegate) IsLocal() bool                                     { return true }
func (noDelegate) Close(context.Context) error                       { return nil }

// load reads a locally missing key through the delegate. Delegate failures and
// absent values count as load failures and are reported to the caller as a miss.
// The time spent in the delegate is recorded whatever the outcome.
func (c *Local) load(ctx context.Context, key Key) ([]byte, bool, error) {
	if !c.hasDelegate {
		return nil, false, nil
	}
	start := c.now()
	v, ok, err := c.delegate.Get(ctx, key)
	c.loadNanos.Add(int64(c.since(start)))
	if err != nil || !ok || v == nil {
		c.loadFail.Add(1)
		c.loadFailed(key.namespace, 1, err)
		return nil, false, nil
	}
	if err := c.admit(key, v); err != nil {
		return nil, false, err
	}
	c.loadOK.Add(1)
	return v, true, nil
}

func (c *Local) loadBulk(ctx context.Context, missing []Key, out map[Key][]byte) error {
	if !c.hasDelegate {
		return nil
	}
	start := c.now()
	loaded, err := c.delegate.GetBulk(ctx, missing)
	c.loadNanos.Add(int64(c.since(start)))
	if err != nil {
		c.loadFail.Add(int64(len(missing)))
		// one report per namespace
		var order []string
		per := make(map[string]int)
		for _, k := range missing {
			if per[k.namespace] == 0 {
				order = append(order, k.namespace)
			}
			per[k.namespace]++
		}
		for _, ns := range order {
			c.loadFailed(ns, per[ns], err)
		}
		return nil
	}

	failed := 0
	for _, k := range missing {
		v, ok := loaded[k]
		if !ok || v == nil {
			failed++
			continue
		}
		if err := c.admit(k, v); err != nil {
			return err
		}
		out[k] = v
		c.loadOK.Add(1)
	}
	if failed > 0 {
		c.loadFail.Add(int64(failed))
	}
	return nil
}

// loadFailed reports a delegate error; absent values are counted but not reported.
func (c *Local) loadFailed(namespace string, n int, err error) {
	if err == nil {
		return
	}
	c.log.Warn("delegate load failed", Fields{"namespace": namespace, "keys": n, "err": err})
	c.hooks.DelegateLoadFailed(namespace, err)
}

// forward runs a write-through call. Failures are logged, never returned.
func (c *Local) forward(op, namespace string, call func() error) {
	if !c.hasDelegate {
		return
	}
	if err := call(); err != nil {
		c.log.Warn("delegate write-through failed", Fields{"op": op, "namespace": namespace, "err": err})
		c.hooks.DelegateWriteFailed(op, namespace, err)
	}
}

func (c *Local) since(t time.Time) time.Duration {
	d := c.now().Sub(t)
	if d < 0 {
		return 0
	}
	return d
}

// Package asynchook moves Hooks calls off the cache's maintenance path.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{EvictedEvery: 100})
//	hooks := asynchook.New(raw, asynchook.Options{Workers: 1, Queue: 1000})
//	defer hooks.Close()
//
//	cache, _ := zipcache.New(zipcache.Options{
//	    Weighted:  true,
//	    MaxWeight: 64 << 20,
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync/atomic"

	"github.com/unkn0wn-root/zipcache"
	"github.com/unkn0wn-root/zipcache/executor"
)

type Options struct {
	// Executor runs the calls. nil => a pool of Workers owned by Hooks.
	Executor executor.Executor
	Workers  int // 0 => 1
	Queue    int // 0 => 1024
}

// Hooks forwards every event to inner on an executor. Events that the executor
// refuses (queue full, closed) are dropped and counted.
type Hooks struct {
	inner   zipcache.Hooks
	exec    executor.Executor
	owned   *executor.Pool
	dropped atomic.Int64
}

var _ zipcache.Hooks = (*Hooks)(nil)

func New(inner zipcache.Hooks, opts Options) *Hooks {
	h := &Hooks{inner: inner, exec: opts.Executor}
	if h.exec == nil {
		workers, qlen := opts.Workers, opts.Queue
		if workers <= 0 {
			workers = 1
		}
		if qlen <= 0 {
			qlen = 1024
		}
		h.owned = executor.NewPool(workers, qlen)
		h.exec = h.owned
	}
	return h
}

// Close drains queued events and stops owned workers. A caller-supplied
// executor is left running.
func (h *Hooks) Close() {
	if h.owned != nil {
		h.owned.Close()
	}
}

// Dropped counts events lost to a full or closed executor.
func (h *Hooks) Dropped() int64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	if err := h.exec.Execute(f); err != nil {
		h.dropped.Add(1)
	}
}

func (h *Hooks) Evicted(ns string, w int64, reason string) {
	h.try(func() { h.inner.Evicted(ns, w, reason) })
}
func (h *Hooks) DelegateLoadFailed(ns string, err error) {
	h.try(func() { h.inner.DelegateLoadFailed(ns, err) })
}
func (h *Hooks) DelegateWriteFailed(op, ns string, err error) {
	h.try(func() { h.inner.DelegateWriteFailed(op, ns, err) })
}
func (h *Hooks) LengthMismatch(want, got int) { h.try(func() { h.inner.LengthMismatch(want, got) }) }

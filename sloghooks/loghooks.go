// Package sloghooks implements zipcache.Hooks on log/slog, with sampling for
// the high-volume events.
package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/zipcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	EvictedEvery  uint64
	MismatchEvery uint64
	// LoadFailedEvery samples delegate load failures, which arrive once per
	// missing key during a delegate outage.
	LoadFailedEvery uint64
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	evictedCtr  atomic.Uint64
	mismatchCtr atomic.Uint64
	loadCtr     atomic.Uint64
}

var _ zipcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Evicted(ns string, weight int64, reason string) {
	if h.l == nil || !sample(h.opts.EvictedEvery, &h.evictedCtr) {
		return
	}
	h.l.Debug("zipcache.evicted",
		"ns", ns,
		"weight", weight,
		"reason", reason)
}

func (h *Hooks) DelegateLoadFailed(ns string, err error) {
	if h.l == nil || !sample(h.opts.LoadFailedEvery, &h.loadCtr) {
		return
	}
	h.l.Warn("zipcache.delegate_load_failed",
		"ns", ns,
		"err", err)
}

func (h *Hooks) DelegateWriteFailed(op, ns string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("zipcache.delegate_write_failed",
		"op", op,
		"ns", ns,
		"err", err)
}

func (h *Hooks) LengthMismatch(want, got int) {
	if h.l == nil || !sample(h.opts.MismatchEvery, &h.mismatchCtr) {
		return
	}
	h.l.Info("zipcache.length_mismatch",
		"want", want,
		"got", got)
}

package zipcache

import (
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/zipcache/metrics"
)

const (
	MetricRequests      = "requests"
	MetricLoadTime      = "loadTime"
	MetricEvictionBytes = "evictionBytes"
)

// StatsSource is anything that can produce a Stats snapshot; every Cache is one.
type StatsSource interface {
	Stats() Stats
}

type MonitorOptions struct {
	Engine string       // "" => DefaultEngine
	Sink   metrics.Sink // nil => metrics.Nop
	Logger Logger
}

// Monitor reports cumulative and per-poll statistics of one source. It owns the
// snapshot taken at the previous poll, so independent monitors of the same cache
// do not disturb each other's deltas. Polls are serialized: every change in the
// source is attributed to exactly one delta.
type Monitor struct {
	src    StatsSource
	engine string
	sink   metrics.Sink
	log    Logger

	mu    sync.Mutex
	prior Stats
}

func NewMonitor(src StatsSource, opts MonitorOptions) *Monitor {
	return &Monitor{
		src:    src,
		engine: coalesce(opts.Engine, DefaultEngine),
		sink:   coalesce[metrics.Sink](opts.Sink, metrics.Nop{}),
		log:    coalesce[Logger](opts.Logger, NopLogger{}),
	}
}

// Poll snapshots the source, emits total and delta metrics and advances the
// stored snapshot. The first poll reports everything since the source was created.
func (m *Monitor) Poll() (total, delta Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total = m.src.Stats()
	delta = total.Sub(m.prior)
	m.prior = total

	m.emit(metrics.WindowDelta, delta)
	m.emit(metrics.WindowTotal, total)
	m.log.Debug("stats polled", Fields{"engine": m.engine, "requests": delta.Requests(), "hitRate": delta.HitRate()})
	return total, delta
}

// Run polls every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Poll()
		}
	}
}

func (m *Monitor) emit(window string, s Stats) {
	m.sink.Emit(metrics.Name(m.engine, window, MetricRequests), s.Requests())
	m.sink.Emit(metrics.Name(m.engine, window, MetricLoadTime), int64(s.TotalLoadTime))
	m.sink.Emit(metrics.Name(m.engine, window, MetricEvictionBytes), s.EvictionBytes)
}

package zipcache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/unkn0wn-root/zipcache/metrics"
)

func TestMonitorDeltas(t *testing.T) {
	ctx := context.Background()
	c := newTestLocal(t, nil)
	rec := metrics.NewRecorder()
	m := NewMonitor(c, MonitorOptions{Sink: rec})

	m.Poll()
	_, delta := m.Poll()
	if delta != (Stats{}) {
		t.Fatalf("idle delta = %+v, want zero", delta)
	}

	_ = c.Put(ctx, key("ns", "k"), []byte("v"))
	_, _, _ = c.Get(ctx, key("ns", "k"))
	_, _, _ = c.Get(ctx, key("ns", "missing"))

	total, delta := m.Poll()
	if delta.Hits != 1 || delta.Misses != 1 {
		t.Fatalf("delta hits/misses = %d/%d, want 1/1", delta.Hits, delta.Misses)
	}
	if total.Requests() != 2 {
		t.Fatalf("total requests = %d, want 2", total.Requests())
	}

	if v, ok := rec.Last("cache/zipcache/delta/requests"); !ok || v != 2 {
		t.Fatalf("delta requests metric = %d (ok=%v), want 2", v, ok)
	}
	if v, ok := rec.Last("cache/zipcache/total/requests"); !ok || v != 2 {
		t.Fatalf("total requests metric = %d (ok=%v), want 2", v, ok)
	}
	if _, ok := rec.Last("cache/zipcache/delta/evictionBytes"); !ok {
		t.Fatalf("evictionBytes metric missing")
	}
	if _, ok := rec.Last("cache/zipcache/total/loadTime"); !ok {
		t.Fatalf("loadTime metric missing")
	}
	// three polls, six metrics each
	if n := len(rec.Events()); n != 18 {
		t.Fatalf("events = %d, want 18", n)
	}
}

func TestMonitorsAreIndependent(t *testing.T) {
	ctx := context.Background()
	c := newTestLocal(t, nil)
	a := NewMonitor(c, MonitorOptions{})
	b := NewMonitor(c, MonitorOptions{Engine: "other"})

	_, _, _ = c.Get(ctx, key("ns", "x"))
	if _, d := a.Poll(); d.Misses != 1 {
		t.Fatalf("a delta misses = %d, want 1", d.Misses)
	}
	if _, d := b.Poll(); d.Misses != 1 {
		t.Fatalf("b delta misses = %d, want 1", d.Misses)
	}
}

// Concurrent polls of one Monitor never report the same activity twice.
func TestMonitorConcurrentPollsPartitionActivity(t *testing.T) {
	ctx := context.Background()
	c := newTestLocal(t, nil)
	m := NewMonitor(c, MonitorOptions{})

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sum int64
	)
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_, _, _ = c.Get(ctx, key("ns", "x"))
				_, d := m.Poll()
				mu.Lock()
				sum += d.Requests()
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	_, d := m.Poll()
	sum += d.Requests()

	if sum != 800 {
		t.Fatalf("sum of deltas = %d, want 800", sum)
	}
}

func TestMonitorRun(t *testing.T) {
	c := newTestLocal(t, nil)
	rec := metrics.NewRecorder()
	m := NewMonitor(c, MonitorOptions{Sink: rec})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for len(rec.Events()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
	if len(rec.Events()) == 0 {
		t.Fatalf("Run never polled")
	}
}

func TestStatsSub(t *testing.T) {
	cur := Stats{Hits: 5, Misses: 1, Entries: 2, SizeBytes: 10, TotalLoadTime: time.Second}
	old := Stats{Hits: 7, Misses: 1, Entries: 4, SizeBytes: 30, TotalLoadTime: 2 * time.Second}
	d := cur.Sub(old)
	if d.Hits != 0 || d.TotalLoadTime != 0 {
		t.Fatalf("counters must clamp at zero: %+v", d)
	}
	if d.Entries != -2 || d.SizeBytes != -20 {
		t.Fatalf("gauges are plain differences: %+v", d)
	}
	if r := (Stats{Hits: 3, Misses: 1}).HitRate(); r != 0.75 {
		t.Fatalf("hit rate = %v", r)
	}
}

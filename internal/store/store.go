// Package store implements a concurrent, weight- and access-expiry-bounded byte store.
//
// Foreground operations only touch a sharded map and record what happened into two
// buffers: a lossy read buffer and an ordered write buffer. A maintenance task,
// submitted to the configured executor, replays those buffers into an access queue
// and then restores the expiry and weight bounds by evicting from the queue tail.
// At most one maintenance task is pending at any time.
package store

import (
	"hash/maphash"
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/zipcache/executor"
)

const (
	defaultShards = 16
	readBufferLen = 256
	// reads recorded before a drain is requested
	readDrainThreshold = 64
	// writers help with maintenance once this many writes are pending
	writeHighWater = 4096
)

// Cause explains why an entry left the store without being invalidated.
type Cause uint8

const (
	CauseSize Cause = iota + 1
	CauseExpired
)

func (c Cause) String() string {
	switch c {
	case CauseSize:
		return "size"
	case CauseExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Config controls the bounds of a Store. The zero value is an unbounded store
// whose maintenance runs inline.
type Config[K comparable] struct {
	// Weighted enforces MaxWeight. A MaxWeight of 0 then keeps nothing.
	Weighted  bool
	MaxWeight int64
	// Expiring enforces ExpireAfterAccess. A duration of 0 then hides every
	// entry as soon as it is written.
	Expiring          bool
	ExpireAfterAccess time.Duration
	// Weigher defaults to the value length.
	Weigher func(key K, value []byte) int64
	// Executor runs maintenance. nil => executor.Direct.
	Executor executor.Executor
	// Now returns the current time in unix nanos. nil => time.Now.
	Now func() int64
	// OnEvict observes size and expiry evictions. Runs during maintenance; keep it cheap.
	OnEvict func(key K, value []byte, weight int64, cause Cause)
	// Shards is rounded up to a power of two. 0 => 16.
	Shards int
	// SweepInterval schedules maintenance periodically when expiry is enabled.
	// 0 => no janitor; expired entries are still hidden from readers.
	SweepInterval time.Duration
}

type writeOp[K comparable] struct {
	e   *entry[K]
	add bool
}

// Store is safe for concurrent use.
type Store[K comparable] struct {
	weighted  bool
	maxWeight int64
	expiring  bool
	expireNs  int64
	weigher   func(K, []byte) int64
	exec      executor.Executor
	now       func() int64
	onEvict   func(K, []byte, int64, Cause)

	seed   maphash.Seed
	shards []*shard[K]
	mask   uint64
	count  atomic.Int64

	reads chan *entry[K]

	writeMu sync.Mutex
	writes  []writeOp[K]

	draining atomic.Bool

	evictMu        sync.Mutex
	lru            queue[K]
	weightedSize   atomic.Int64
	evictions      atomic.Int64
	evictionWeight atomic.Int64

	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func New[K comparable](cfg Config[K]) *Store[K] {
	n := defaultShards
	if cfg.Shards > 0 {
		n = 1
		for n < cfg.Shards {
			n <<= 1
		}
	}

	s := &Store[K]{
		weighted:  cfg.Weighted,
		maxWeight: max(cfg.MaxWeight, 0),
		expiring:  cfg.Expiring,
		expireNs:  max(int64(cfg.ExpireAfterAccess), 0),
		weigher:   cfg.Weigher,
		exec:      cfg.Executor,
		now:       cfg.Now,
		onEvict:   cfg.OnEvict,
		seed:      maphash.MakeSeed(),
		shards:    make([]*shard[K], n),
		mask:      uint64(n - 1),
		reads:     make(chan *entry[K], readBufferLen),
	}
	if s.exec == nil {
		s.exec = executor.Direct{}
	}
	if s.now == nil {
		s.now = func() int64 { return time.Now().UnixNano() }
	}
	if s.weighted && s.weigher == nil {
		s.weigher = func(_ K, v []byte) int64 { return int64(len(v)) }
	}
	for i := range s.shards {
		s.shards[i] = newShard[K]()
	}

	if s.expiring && cfg.SweepInterval > 0 {
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go s.janitor(cfg.SweepInterval)
	}
	return s
}

// Weighted reports whether a weight ceiling is enforced.
func (s *Store[K]) Weighted() bool { return s.weighted }

// Len is the number of entries currently reachable.
func (s *Store[K]) Len() int64 { return s.count.Load() }

// WeightedSize is the total weight accounted for by the last maintenance run.
func (s *Store[K]) WeightedSize() int64 { return s.weightedSize.Load() }

func (s *Store[K]) Evictions() int64 { return s.evictions.Load() }

// EvictionWeight is the summed weight of evicted entries. Always 0 when unweighted.
func (s *Store[K]) EvictionWeight() int64 { return s.evictionWeight.Load() }

// Get returns the stored value and refreshes its access time.
// Entries past their access expiry are reported as absent.
func (s *Store[K]) Get(k K) ([]byte, bool) {
	e := s.shardFor(k).get(k)
	if e == nil {
		return nil, false
	}
	now := s.now()
	if s.expired(e, now) {
		s.scheduleDrain()
		return nil, false
	}
	e.access.Store(now)
	s.recordRead(e)
	return e.value, true
}

// GetAllPresent looks up every key once and returns only the hits.
func (s *Store[K]) GetAllPresent(keys []K) map[K][]byte {
	out := make(map[K][]byte, len(keys))
	for _, k := range keys {
		if _, seen := out[k]; seen {
			continue
		}
		if v, ok := s.Get(k); ok {
			out[k] = v
		}
	}
	return out
}

// Put inserts or replaces k. The value is retained as is; callers must not mutate it.
func (s *Store[K]) Put(k K, v []byte) {
	e := &entry[K]{key: k, value: v}
	if s.weighted {
		e.weight = s.weigher(k, v)
	}
	e.access.Store(s.now())

	sh := s.shardFor(k)
	sh.Lock()
	old := sh.m[k]
	sh.m[k] = e
	// appended under the shard lock so per-key ops replay in map order
	s.writeMu.Lock()
	if old != nil {
		s.writes = append(s.writes, writeOp[K]{e: old})
	}
	s.writes = append(s.writes, writeOp[K]{e: e, add: true})
	pending := len(s.writes)
	s.writeMu.Unlock()
	sh.Unlock()

	if old == nil {
		s.count.Add(1)
	}
	s.afterWrite(pending)
}

// Invalidate removes k if present.
func (s *Store[K]) Invalidate(k K) bool {
	sh := s.shardFor(k)
	sh.Lock()
	e, ok := sh.m[k]
	if !ok {
		sh.Unlock()
		return false
	}
	delete(sh.m, k)
	s.writeMu.Lock()
	s.writes = append(s.writes, writeOp[K]{e: e})
	pending := len(s.writes)
	s.writeMu.Unlock()
	sh.Unlock()

	s.count.Add(-1)
	s.afterWrite(pending)
	return true
}

// InvalidateIf removes every entry whose key matches pred and returns how many
// were removed. Entries written concurrently may survive.
func (s *Store[K]) InvalidateIf(pred func(K) bool) int {
	removed := 0
	pending := 0
	for _, sh := range s.shards {
		sh.Lock()
		for k, e := range sh.m {
			if !pred(k) {
				continue
			}
			delete(sh.m, k)
			s.writeMu.Lock()
			s.writes = append(s.writes, writeOp[K]{e: e})
			pending = len(s.writes)
			s.writeMu.Unlock()
			removed++
		}
		sh.Unlock()
	}
	if removed == 0 {
		return 0
	}
	s.count.Add(-int64(removed))
	s.afterWrite(pending)
	return removed
}

// CleanUp runs maintenance on the calling goroutine.
func (s *Store[K]) CleanUp() {
	s.evictMu.Lock()
	s.maintain()
	s.evictMu.Unlock()
}

// Close stops the janitor. The store stays usable; maintenance then only happens
// on activity.
func (s *Store[K]) Close() {
	s.closeOnce.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
			s.wg.Wait()
		}
	})
}

func (s *Store[K]) shardFor(k K) *shard[K] {
	return s.shards[maphash.Comparable(s.seed, k)&s.mask]
}

func (s *Store[K]) expired(e *entry[K], now int64) bool {
	return s.expiring && now-e.access.Load() >= s.expireNs
}

func (s *Store[K]) recordRead(e *entry[K]) {
	select {
	case s.reads <- e:
		if len(s.reads) >= readDrainThreshold {
			s.scheduleDrain()
		}
	default:
		// buffer full: the read is dropped, only its recency is lost
		s.scheduleDrain()
	}
}

func (s *Store[K]) afterWrite(pending int) {
	if pending >= writeHighWater {
		s.CleanUp()
		return
	}
	s.scheduleDrain()
}

func (s *Store[K]) scheduleDrain() {
	if !s.draining.CompareAndSwap(false, true) {
		return
	}
	if err := s.exec.Execute(s.drain); err != nil {
		s.drain()
	}
}

func (s *Store[K]) drain() {
	s.CleanUp()
	s.draining.Store(false)
	// writes that arrived while the flag was set would otherwise wait for the next op
	if s.pendingWrites() > 0 {
		s.scheduleDrain()
	}
}

func (s *Store[K]) pendingWrites() int {
	s.writeMu.Lock()
	n := len(s.writes)
	s.writeMu.Unlock()
	return n
}

func (s *Store[K]) janitor(every time.Duration) {
	defer s.wg.Done()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.scheduleDrain()
		case <-s.stopCh:
			return
		}
	}
}

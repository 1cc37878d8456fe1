package zipcache

import "time"

// Stats is a point-in-time snapshot of cache counters.
//
// Hits, Misses, Evictions, EvictionBytes, LoadSuccesses, LoadFailures, TotalLoadTime
// and Errors are monotonic. Entries and SizeBytes are gauges; SizeBytes is -1 when
// the cache is not weighted.
type Stats struct {
	Hits          int64
	Misses        int64
	Entries       int64
	SizeBytes     int64
	Evictions     int64
	EvictionBytes int64
	LoadSuccesses int64
	LoadFailures  int64
	TotalLoadTime time.Duration
	Errors        int64
}

// Requests is Hits + Misses.
func (s Stats) Requests() int64 { return s.Hits + s.Misses }

// HitRate is Hits / Requests, or 0 before the first request.
func (s Stats) HitRate() float64 {
	r := s.Requests()
	if r == 0 {
		return 0
	}
	return float64(s.Hits) / float64(r)
}

// Sub returns s - old field by field. Counters are clamped at zero; gauges
// (Entries, SizeBytes) are plain differences.
func (s Stats) Sub(old Stats) Stats {
	d := Stats{
		Hits:          clampSub(s.Hits, old.Hits),
		Misses:        clampSub(s.Misses, old.Misses),
		Entries:       s.Entries - old.Entries,
		Evictions:     clampSub(s.Evictions, old.Evictions),
		EvictionBytes: clampSub(s.EvictionBytes, old.EvictionBytes),
		LoadSuccesses: clampSub(s.LoadSuccesses, old.LoadSuccesses),
		LoadFailures:  clampSub(s.LoadFailures, old.LoadFailures),
		TotalLoadTime: time.Duration(clampSub(int64(s.TotalLoadTime), int64(old.TotalLoadTime))),
		Errors:        clampSub(s.Errors, old.Errors),
	}
	d.SizeBytes = s.SizeBytes - old.SizeBytes
	return d
}

func clampSub(a, b int64) int64 {
	if a < b {
		return 0
	}
	return a - b
}

package zipcache

import "time"

const (
	// DefaultEngine names this cache in metric names.
	DefaultEngine = "zipcache"

	minSweep        = 100 * time.Millisecond
	defaultSweepCap = time.Minute
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// sweepInterval derives the janitor period from the expiry when none is set.
func sweepInterval(o Options) time.Duration {
	if !o.Expiring {
		return 0
	}
	if o.SweepInterval > 0 {
		return o.SweepInterval
	}
	return min(max(o.Expiration, minSweep), defaultSweepCap)
}

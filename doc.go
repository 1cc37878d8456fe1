// Package zipcache implements an in-process byte cache that stores values compressed,
// bounds itself by entry weight and/or access expiry, can chain to a second-tier
// delegate cache, and reports cumulative and per-interval statistics.
//
// Components:
//   - Key: (namespace, key bytes); comparable, immutable.
//   - compress.Codec: length-prefixed LZ4 (or Snappy) frames; the stored form of a value.
//   - internal/store: sharded map + access queue; maintenance runs on an executor.
//   - Delegate: any Cache; read-through on miss, write-through on Put/Invalidate/Close.
//   - Monitor: owns the previous snapshot and reports deltas to a metrics.Sink.
//
// Weight of an entry (only when Options.Weighted is set):
//
//	len(framed payload) + len(key) + len(namespace)*2 + 8
//
// Namespace invalidation is best-effort. Without EvictOnClose it is a no-op locally
// and entries age out through eviction; with it, matching entries present at the
// time of the call are removed, but concurrent writes can survive.
//
// Monitoring:
//
//	mon := zipcache.NewMonitor(cache, zipcache.MonitorOptions{Sink: sink})
//	go mon.Run(ctx, time.Minute)
package zipcache

package zipcache

// Hooks receives high-signal cache events.
// Implementations MUST be cheap and non-blocking; Evicted runs during maintenance
// while the eviction lock is held. Wrap slow hooks with hooks/async.
type Hooks interface {
	// An entry left the cache because of the weight ceiling or access expiry.
	// reason ∈ {"size", "expired"}
	Evicted(namespace string, weight int64, reason string)

	// The delegate failed to load a missing key; the caller saw a miss.
	DelegateLoadFailed(namespace string, err error)

	// A write-through call to the delegate failed.
	// op ∈ {"put", "invalidate", "close"}
	DelegateWriteFailed(op, namespace string, err error)

	// A payload decoded to a different length than its prefix announced.
	LengthMismatch(want, got int)
}

// NopHooks is the default.
type NopHooks struct{}

func (NopHooks) Evicted(string, int64, string)             {}
func (NopHooks) DelegateLoadFailed(string, error)          {}
func (NopHooks) DelegateWriteFailed(string, string, error) {}
func (NopHooks) LengthMismatch(int, int)                   {}

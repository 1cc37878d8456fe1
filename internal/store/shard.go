package store

import "sync"

type shard[K comparable] struct {
	sync.RWMutex
	m map[K]*entry[K]
}

func newShard[K comparable]() *shard[K] {
	return &shard[K]{m: make(map[K]*entry[K])}
}

func (s *shard[K]) get(k K) *entry[K] {
	s.RLock()
	e := s.m[k]
	s.RUnlock()
	return e
}

// deleteIfSame removes k only while it still maps to e; a concurrent Put may have
// replaced it already.
func (s *shard[K]) deleteIfSame(k K, e *entry[K]) bool {
	s.Lock()
	defer s.Unlock()
	if s.m[k] != e {
		return false
	}
	delete(s.m, k)
	return true
}

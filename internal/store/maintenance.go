package store

// maintain must be called with evictMu held.
func (s *Store[K]) maintain() {
	s.drainReads()
	s.drainWrites()
	now := s.now()
	s.expireEntries(now)
	s.evictEntries()
}

func (s *Store[K]) drainReads() {
	for {
		select {
		case e := <-s.reads:
			s.lru.moveToFront(e)
		default:
			return
		}
	}
}

func (s *Store[K]) drainWrites() {
	s.writeMu.Lock()
	ops := s.writes
	s.writes = nil
	s.writeMu.Unlock()

	for _, op := range ops {
		if op.add {
			s.lru.pushFront(op.e)
			s.weightedSize.Add(op.e.weight)
			continue
		}
		if op.e.linked {
			s.lru.remove(op.e)
			s.weightedSize.Add(-op.e.weight)
		}
	}
}

func (s *Store[K]) expireEntries(now int64) {
	if !s.expiring {
		return
	}
	for e := s.lru.tail; e != nil; {
		if !s.expired(e, now) {
			return
		}
		prev := e.prev
		s.evict(e, CauseExpired)
		e = prev
	}
}

func (s *Store[K]) evictEntries() {
	if !s.weighted {
		return
	}
	for s.weightedSize.Load() > s.maxWeight {
		victim := s.lru.tail
		if victim == nil {
			return
		}
		s.evict(victim, CauseSize)
	}
}

func (s *Store[K]) evict(e *entry[K], cause Cause) {
	s.lru.remove(e)
	s.weightedSize.Add(-e.weight)
	if !s.shardFor(e.key).deleteIfSame(e.key, e) {
		// replaced or invalidated concurrently; its own write op is still queued
		return
	}
	s.count.Add(-1)
	s.evictions.Add(1)
	if s.weighted {
		s.evictionWeight.Add(e.weight)
	}
	if s.onEvict != nil {
		s.onEvict(e.key, e.value, e.weight, cause)
	}
}

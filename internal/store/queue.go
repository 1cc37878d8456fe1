package store

import "sync/atomic"

// entry is both the map value and an intrusive node of the access queue.
// prev/next/linked belong to the maintenance goroutine (guarded by Store.evictMu).
type entry[K comparable] struct {
	key    K
	value  []byte
	weight int64
	access atomic.Int64 // unix nanos of the last read or write

	prev, next *entry[K]
	linked     bool
}

// queue orders entries by access: head is most recent, tail is the eviction candidate.
type queue[K comparable] struct {
	head, tail *entry[K]
	n          int
}

func (q *queue[K]) pushFront(e *entry[K]) {
	e.prev = nil
	e.next = q.head
	if q.head != nil {
		q.head.prev = e
	}
	q.head = e
	if q.tail == nil {
		q.tail = e
	}
	e.linked = true
	q.n++
}

func (q *queue[K]) remove(e *entry[K]) {
	if !e.linked {
		return
	}
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		q.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		q.tail = e.prev
	}
	e.prev, e.next = nil, nil
	e.linked = false
	q.n--
}

func (q *queue[K]) moveToFront(e *entry[K]) {
	if !e.linked || q.head == e {
		return
	}
	q.remove(e)
	q.pushFront(e)
}

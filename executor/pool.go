package executor

import "sync"

const defaultQueue = 1024

// Pool is a fixed set of workers draining a bounded queue.
// Execute never blocks: a full queue yields ErrSaturated.
type Pool struct {
	mu     sync.RWMutex
	q      chan func()
	closed bool
	wg     sync.WaitGroup
	once   sync.Once
}

var _ Executor = (*Pool)(nil)

// NewSingleThread returns a Pool with one worker.
func NewSingleThread(qlen int) *Pool { return NewPool(1, qlen) }

// NewPool starts workers goroutines reading from a queue of qlen tasks.
func NewPool(workers, qlen int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = defaultQueue
	}

	p := &Pool{q: make(chan func(), qlen)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for f := range p.q {
				f()
			}
		}()
	}
	return p
}

func (p *Pool) Execute(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.q <- task:
		return nil
	default:
		return ErrSaturated
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
// Safe to call more than once.
func (p *Pool) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.q)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

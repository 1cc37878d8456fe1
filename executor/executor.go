// Package executor provides the work-runners used for cache maintenance.
//
// Maintenance tasks are short and CPU bound. An Executor must never block the
// submitting goroutine for long: when it cannot accept a task it returns an error
// and the caller decides whether to run the task inline.
package executor

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
)

var (
	ErrClosed    = errors.New("executor: closed")
	ErrSaturated = errors.New("executor: queue full")
)

// Executor runs tasks, possibly asynchronously.
type Executor interface {
	Execute(task func()) error
}

// Direct runs every task on the calling goroutine.
// Handy in tests where maintenance must complete before the call returns.
type Direct struct{}

func (Direct) Execute(task func()) error {
	task()
	return nil
}

// Kind selects an executor from configuration.
type Kind string

const (
	// SingleThread is one dedicated worker owned by the cache (default).
	SingleThread Kind = "single_thread"
	// SharedPool is the process-wide pool shared by every cache that asks for it.
	// Tasks from a busy neighbour can delay maintenance; prefer SingleThread unless
	// many small caches would otherwise each hold a goroutine.
	SharedPool Kind = "shared"
	// Inline runs maintenance on the calling goroutine.
	Inline Kind = "direct"
)

// ParseKind maps configuration strings to a Kind. The empty string is SingleThread.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single_thread", "single":
		return SingleThread, nil
	case "shared", "common_fjp", "pool":
		return SharedPool, nil
	case "direct", "inline":
		return Inline, nil
	default:
		return "", fmt.Errorf("executor: unknown kind %q", s)
	}
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k), nil }

var (
	sharedOnce sync.Once
	shared     *Pool
)

// Shared returns the process-wide pool, creating it on first use.
// It is never closed.
func Shared() *Pool {
	sharedOnce.Do(func() {
		shared = NewPool(runtime.GOMAXPROCS(0), 4096)
	})
	return shared
}

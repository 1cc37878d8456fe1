// Package metrics defines the sink the cache monitor reports to.
//
// Metric names follow cache/<engine>/<window>/<metric>, where window is "delta"
// (since the previous poll) or "total" (since the cache was created).
package metrics

import (
	"strings"
	"sync"
	"time"
)

const (
	WindowDelta = "delta"
	WindowTotal = "total"
)

// Sink accepts named numeric events. Implementations must be safe for concurrent use.
type Sink interface {
	Emit(name string, value int64)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(name string, value int64)

func (f SinkFunc) Emit(name string, value int64) { f(name, value) }

// Nop discards everything.
type Nop struct{}

func (Nop) Emit(string, int64) {}

// Name builds a metric name.
func Name(engine, window, metric string) string {
	return "cache/" + engine + "/" + window + "/" + metric
}

// Parse splits a name produced by Name. ok is false for foreign names.
func Parse(name string) (engine, window, metric string, ok bool) {
	parts := strings.Split(name, "/")
	if len(parts) != 4 || parts[0] != "cache" {
		return "", "", "", false
	}
	return parts[1], parts[2], parts[3], true
}

// Event is one emitted value.
type Event struct {
	Name      string    `json:"metric" msgpack:"metric" cbor:"metric"`
	Value     int64     `json:"value" msgpack:"value" cbor:"value"`
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp" cbor:"timestamp"`
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	now    func() time.Time
}

var _ Sink = (*Recorder)(nil)

func NewRecorder() *Recorder { return &Recorder{now: time.Now} }

func (r *Recorder) Emit(name string, value int64) {
	r.mu.Lock()
	r.events = append(r.events, Event{Name: name, Value: value, Timestamp: r.now()})
	r.mu.Unlock()
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Last returns the most recent value emitted under name.
func (r *Recorder) Last(name string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Name == name {
			return r.events[i].Value, true
		}
	}
	return 0, false
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// Tee fans every event out to all sinks.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(name string, value int64) {
		for _, s := range sinks {
			s.Emit(name, value)
		}
	})
}

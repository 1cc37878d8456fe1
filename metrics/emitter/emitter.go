// Package emitter writes monitor events to an io.Writer, one encoded event per
// record, so a sidecar or log shipper can forward them.
//
// Text codecs (JSON) are written as newline-terminated lines. Binary codecs
// (msgpack, CBOR) are written as frames: a 4-byte big-endian length followed by
// the encoded event.
package emitter

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/zipcache"
	"github.com/unkn0wn-root/zipcache/codec"
	"github.com/unkn0wn-root/zipcache/metrics"
)

type Framing int

const (
	Lines Framing = iota
	LengthPrefixed
)

// MaxFrame bounds a single frame when reading.
const MaxFrame = 1 << 20

var ErrFrameTooLarge = errors.New("emitter: frame too large")

type Options struct {
	Writer  io.Writer
	Codec   codec.Codec[metrics.Event] // nil => codec.JSON
	Framing Framing
	Logger  zipcache.Logger
	Now     func() time.Time
}

// Sink encodes each event and writes it while holding a mutex, so records never
// interleave. Write errors are logged and counted; Emit never fails.
type Sink struct {
	mu      sync.Mutex
	w       io.Writer
	codec   codec.Codec[metrics.Event]
	framing Framing
	log     zipcache.Logger
	now     func() time.Time

	failures atomic.Int64
}

var _ metrics.Sink = (*Sink)(nil)

func New(opts Options) (*Sink, error) {
	if opts.Writer == nil {
		return nil, errors.New("emitter: nil writer")
	}
	s := &Sink{
		w:       opts.Writer,
		codec:   opts.Codec,
		framing: opts.Framing,
		log:     opts.Logger,
		now:     opts.Now,
	}
	if s.codec == nil {
		s.codec = codec.JSON[metrics.Event]{}
	}
	if s.log == nil {
		s.log = zipcache.NopLogger{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

func (s *Sink) Emit(name string, value int64) {
	b, err := s.codec.Encode(metrics.Event{Name: name, Value: value, Timestamp: s.now()})
	if err != nil {
		s.fail(name, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.framing {
	case LengthPrefixed:
		var hdr [4]byte
		binary.BigEndian.PutUint32(hdr[:], uint32(len(b)))
		if _, err = s.w.Write(hdr[:]); err == nil {
			_, err = s.w.Write(b)
		}
	default:
		if _, err = s.w.Write(b); err == nil {
			_, err = s.w.Write([]byte{'\n'})
		}
	}
	if err != nil {
		s.fail(name, err)
	}
}

// Failures counts events that could not be encoded or written.
func (s *Sink) Failures() int64 { return s.failures.Load() }

func (s *Sink) fail(name string, err error) {
	s.failures.Add(1)
	s.log.Warn("metric emit failed", zipcache.Fields{"metric": name, "err": err})
}

// Read decodes every record in r written with the same codec and framing.
func Read(r io.Reader, cd codec.Codec[metrics.Event], framing Framing) ([]metrics.Event, error) {
	if cd == nil {
		cd = codec.JSON[metrics.Event]{}
	}
	var out []metrics.Event
	if framing == LengthPrefixed {
		var hdr [4]byte
		for {
			if _, err := io.ReadFull(r, hdr[:]); err != nil {
				if errors.Is(err, io.EOF) {
					return out, nil
				}
				return out, fmt.Errorf("emitter: read header: %w", err)
			}
			n := binary.BigEndian.Uint32(hdr[:])
			if n > MaxFrame {
				return out, ErrFrameTooLarge
			}
			buf := make([]byte, n)
			if _, err := io.ReadFull(r, buf); err != nil {
				return out, fmt.Errorf("emitter: read frame: %w", err)
			}
			ev, err := cd.Decode(buf)
			if err != nil {
				return out, fmt.Errorf("emitter: decode frame: %w", err)
			}
			out = append(out, ev)
		}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), MaxFrame)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		ev, err := cd.Decode(sc.Bytes())
		if err != nil {
			return out, fmt.Errorf("emitter: decode line: %w", err)
		}
		out = append(out, ev)
	}
	return out, sc.Err()
}

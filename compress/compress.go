// Package compress frames byte payloads for storage in the cache.
//
// A framed payload is a 4-byte big-endian length of the original value followed by
// the compressor's output:
//
//	origLen(u32 be) | compressed(...)
//
// The framing is self-describing: Deserialize sizes its output buffer from the
// prefix alone. Frame integrity beyond the prefix is left to the decompressor.
package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const prefixLen = 4

var (
	// ErrTruncated is returned when a payload is too short to carry the length prefix.
	ErrTruncated = errors.New("compress: truncated payload")
	// ErrCorrupt wraps failures reported by the underlying decompressor.
	ErrCorrupt = errors.New("compress: corrupt payload")
	// ErrTooLarge is returned for values whose length does not fit the prefix.
	ErrTooLarge = errors.New("compress: value too large")
)

// Compressor is the capability the Codec needs from a block compressor.
// Implementations must be safe for concurrent use.
type Compressor interface {
	// Name identifies the algorithm (e.g. "lz4").
	Name() string
	// MaxBound returns the worst-case compressed size for n input bytes.
	MaxBound(n int) int
	// Compress writes the compressed form of src into dst and returns the number
	// of bytes written. dst is at least MaxBound(len(src)) long.
	Compress(dst, src []byte) (int, error)
	// Decompress decodes src into dst and returns the number of bytes written.
	Decompress(dst, src []byte) (int, error)
}

// Codec serializes values into length-prefixed compressed frames.
type Codec struct {
	c Compressor
	// onMismatch is called when the decoded length differs from the prefix.
	onMismatch func(want, got int)
}

// NewCodec returns a Codec over c. A nil c selects LZ4.
// onMismatch may be nil.
func NewCodec(c Compressor, onMismatch func(want, got int)) *Codec {
	if c == nil {
		c = LZ4{}
	}
	return &Codec{c: c, onMismatch: onMismatch}
}

// Compressor returns the underlying compressor.
func (cd *Codec) Compressor() Compressor { return cd.c }

// Serialize compresses value and prefixes it with the original length.
func (cd *Codec) Serialize(value []byte) ([]byte, error) {
	if uint64(len(value)) > math.MaxUint32 {
		return nil, ErrTooLarge
	}
	out := make([]byte, prefixLen+cd.c.MaxBound(len(value)))
	binary.BigEndian.PutUint32(out[:prefixLen], uint32(len(value)))
	if len(value) == 0 {
		return out[:prefixLen], nil
	}
	n, err := cd.c.Compress(out[prefixLen:], value)
	if err != nil {
		return nil, fmt.Errorf("compress: %s compress: %w", cd.c.Name(), err)
	}
	return out[:prefixLen+n], nil
}

// Deserialize reverses Serialize. A nil input yields a nil output.
func (cd *Codec) Deserialize(b []byte) ([]byte, error) {
	if b == nil {
		return nil, nil
	}
	if len(b) < prefixLen {
		return nil, ErrTruncated
	}
	want := int(binary.BigEndian.Uint32(b[:prefixLen]))
	out := make([]byte, want)
	if want == 0 {
		return out, nil
	}
	n, err := cd.c.Decompress(out, b[prefixLen:])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, cd.c.Name(), err)
	}
	if n != want {
		if cd.onMismatch != nil {
			cd.onMismatch(want, n)
		}
		return out[:n], nil
	}
	return out, nil
}

// DecodedLen reads the original length from a framed payload without decoding it.
func DecodedLen(b []byte) (int, error) {
	if len(b) < prefixLen {
		return 0, ErrTruncated
	}
	return int(binary.BigEndian.Uint32(b[:prefixLen])), nil
}

// ByName returns the compressor registered under name.
// The empty name selects LZ4.
func ByName(name string) (Compressor, error) {
	switch name {
	case "", "lz4":
		return LZ4{}, nil
	case "snappy":
		return Snappy{}, nil
	default:
		return nil, fmt.Errorf("compress: unknown compressor %q", name)
	}
}

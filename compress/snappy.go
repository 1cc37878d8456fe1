package compress

import (
	"fmt"

	"github.com/golang/snappy"
)

// Snappy compresses with the block format of github.com/golang/snappy.
type Snappy struct{}

var _ Compressor = Snappy{}

func (Snappy) Name() string { return "snappy" }

func (Snappy) MaxBound(n int) int {
	if b := snappy.MaxEncodedLen(n); b > 0 {
		return b
	}
	return n
}

func (Snappy) Compress(dst, src []byte) (int, error) {
	if snappy.MaxEncodedLen(len(src)) < 0 {
		return 0, ErrTooLarge
	}
	return len(snappy.Encode(dst, src)), nil
}

// Decompress refuses blocks that would not fit dst instead of letting snappy
// allocate a larger buffer behind our back.
func (Snappy) Decompress(dst, src []byte) (int, error) {
	n, err := snappy.DecodedLen(src)
	if err != nil {
		return 0, err
	}
	if n > len(dst) {
		return 0, fmt.Errorf("snappy: decoded length %d exceeds buffer %d", n, len(dst))
	}
	out, err := snappy.Decode(dst, src)
	if err != nil {
		return 0, err
	}
	return len(out), nil
}

package compress

import "github.com/pierrec/lz4/v4"

// LZ4 is the default compressor: raw LZ4 blocks, no frame header.
// The zero value is ready to use.
type LZ4 struct{}

var _ Compressor = LZ4{}

func (LZ4) Name() string { return "lz4" }

func (LZ4) MaxBound(n int) int { return lz4.CompressBlockBound(n) }

// Compress relies on dst being sized by MaxBound; with a smaller buffer lz4 reports
// incompressible input as 0 bytes written.
func (LZ4) Compress(dst, src []byte) (int, error) {
	return lz4.CompressBlock(src, dst, nil)
}

func (LZ4) Decompress(dst, src []byte) (int, error) {
	return lz4.UncompressBlock(src, dst)
}

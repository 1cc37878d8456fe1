package compress

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func compressors() []Compressor { return []Compressor{LZ4{}, Snappy{}} }

func TestRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(843671346794319))
	random := make([]byte, 4096)
	rnd.Read(random)

	inputs := map[string][]byte{
		"one byte":     {0x2a},
		"text":         []byte("hiiiiiiiiiiiiiiiiiii"),
		"repetitive":   bytes.Repeat([]byte("abcd"), 1024),
		"random":       random,
		"random small": random[:14],
	}

	for _, c := range compressors() {
		cd := NewCodec(c, nil)
		for name, in := range inputs {
			t.Run(c.Name()+"/"+name, func(t *testing.T) {
				framed, err := cd.Serialize(in)
				require.NoError(t, err)

				n, err := DecodedLen(framed)
				require.NoError(t, err)
				require.Equal(t, len(in), n)

				out, err := cd.Deserialize(framed)
				require.NoError(t, err)
				require.Equal(t, in, out)
			})
		}
	}
}

func TestEmptyValue(t *testing.T) {
	cd := NewCodec(nil, nil)
	framed, err := cd.Serialize([]byte{})
	require.NoError(t, err)
	require.Len(t, framed, prefixLen)

	out, err := cd.Deserialize(framed)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestNilPassthrough(t *testing.T) {
	out, err := NewCodec(nil, nil).Deserialize(nil)
	require.NoError(t, err)
	require.Nil(t, out)
}

// 14 incompressible bytes become one token plus 14 literals, plus the prefix.
func TestLZ4IncompressibleFrameSize(t *testing.T) {
	rnd := rand.New(rand.NewSource(843671346794319))
	v := make([]byte, 14)
	rnd.Read(v)

	framed, err := NewCodec(LZ4{}, nil).Serialize(v)
	require.NoError(t, err)
	require.Len(t, framed, 19)
}

func TestTruncatedPrefix(t *testing.T) {
	_, err := NewCodec(nil, nil).Deserialize([]byte{0, 0, 1})
	require.ErrorIs(t, err, ErrTruncated)

	_, err = DecodedLen([]byte{})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestCorruptFrameSurfacesDecoderFault(t *testing.T) {
	for _, c := range compressors() {
		t.Run(c.Name(), func(t *testing.T) {
			// prefix claims 16 bytes, body is a literal run with no literals behind it.
			bad := []byte{0, 0, 0, 16, 0x70}
			_, err := NewCodec(c, nil).Deserialize(bad)
			require.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestPrefixTooSmallIsCorrupt(t *testing.T) {
	cd := NewCodec(LZ4{}, nil)
	framed, err := cd.Serialize(bytes.Repeat([]byte("xyz"), 100))
	require.NoError(t, err)

	binary.BigEndian.PutUint32(framed[:prefixLen], 10)
	_, err = cd.Deserialize(framed)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestLengthMismatchIsSoft(t *testing.T) {
	var want, got int
	cd := NewCodec(LZ4{}, func(w, g int) { want, got = w, g })

	in := bytes.Repeat([]byte("hello world "), 20)
	framed, err := cd.Serialize(in)
	require.NoError(t, err)

	binary.BigEndian.PutUint32(framed[:prefixLen], uint32(len(in)+7))
	out, err := cd.Deserialize(framed)
	require.NoError(t, err)
	require.Equal(t, in, out)
	require.Equal(t, len(in)+7, want)
	require.Equal(t, len(in), got)
}

func TestByName(t *testing.T) {
	c, err := ByName("")
	require.NoError(t, err)
	require.Equal(t, "lz4", c.Name())

	c, err = ByName("snappy")
	require.NoError(t, err)
	require.Equal(t, "snappy", c.Name())

	_, err = ByName("zstd")
	require.Error(t, err)
}

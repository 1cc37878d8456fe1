package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version   byte = 1
	kindEntry byte = 1
	kindGen   byte = 2

	maxNamespace = 0xFFFF
)

var (
	ErrCorrupt = errors.New("zipcache: corrupt entry")
	magic4     = [...]byte{'Z', 'I', 'P', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry is a delegate value together with the identity it was written under.
type Entry struct {
	Gen       uint64
	Namespace string
	Key       []byte
	Payload   []byte
}

// Entry:
//
//	magic(4) | ver(1) | kind(1=entry) | gen(u64 be)
//	nsLen(u16 be) | ns | keyLen(u32 be) | key | vlen(u32 be) | payload(vlen)
func EncodeEntry(e Entry) ([]byte, error) {
	if len(e.Namespace) > maxNamespace {
		return nil, ErrCorrupt
	}
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 8 + 2 + len(e.Namespace) + 4 + len(e.Key) + 4 + len(e.Payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindEntry)

	var u8 [8]byte
	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint64(u8[:], e.Gen)
	buf.Write(u8[:])

	binary.BigEndian.PutUint16(u2[:], uint16(len(e.Namespace)))
	buf.Write(u2[:])
	buf.WriteString(e.Namespace)

	binary.BigEndian.PutUint32(u4[:], uint32(len(e.Key)))
	buf.Write(u4[:])
	buf.Write(e.Key)

	binary.BigEndian.PutUint32(u4[:], uint32(len(e.Payload)))
	buf.Write(u4[:])
	buf.Write(e.Payload)
	return buf.Bytes(), nil
}

// DecodeEntry validates the envelope. Key and Payload alias b.
func DecodeEntry(b []byte) (Entry, error) {
	const hdr = 4 + 1 + 1 + 8
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindEntry {
		return Entry{}, ErrCorrupt
	}
	var e Entry
	off := 6

	e.Gen = binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	// namespace
	if off+2 > len(b) {
		return Entry{}, ErrCorrupt
	}
	nlen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if nlen > len(b)-off {
		return Entry{}, ErrCorrupt
	}
	e.Namespace = string(b[off : off+nlen])
	off += nlen

	// key
	klen, off, ok := readLen32(b, off)
	if !ok {
		return Entry{}, ErrCorrupt
	}
	e.Key = b[off : off+klen]
	off += klen

	// payload
	vlen, off, ok := readLen32(b, off)
	if !ok {
		return Entry{}, ErrCorrupt
	}
	e.Payload = b[off : off+vlen]
	off += vlen

	if off != len(b) {
		return Entry{}, ErrCorrupt
	}
	return e, nil
}

func readLen32(b []byte, off int) (n, next int, ok bool) {
	if off+4 > len(b) {
		return 0, off, false
	}
	n = int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if n < 0 || n > len(b)-off { // overflow-safe bound check
		return 0, off, false
	}
	return n, off, true
}

// Gen: magic(4) | ver(1) | kind(2=gen) | gen(u64 be)
func EncodeGen(gen uint64) []byte {
	b := make([]byte, 4+1+1+8)
	copy(b, magic4[:])
	b[4] = version
	b[5] = kindGen
	binary.BigEndian.PutUint64(b[6:], gen)
	return b
}

func DecodeGen(b []byte) (uint64, error) {
	if len(b) != 4+1+1+8 || !hasMagic(b) || b[4] != version || b[5] != kindGen {
		return 0, ErrCorrupt
	}
	return binary.BigEndian.Uint64(b[6:]), nil
}

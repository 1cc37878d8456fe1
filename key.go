package zipcache

import (
	"encoding/hex"
	"strconv"
)

const (
	// NamespaceCharWidth is the weight charged per namespace character.
	NamespaceCharWidth = 2
	// FixedEntryCost is the minimum weight of any entry.
	FixedEntryCost = 8
)

// Key identifies a cached value: a namespace plus opaque key bytes.
// Keys are immutable and comparable, so they can be used directly as map keys.
type Key struct {
	namespace string
	key       string
}

// NewKey copies key, so later changes to the slice do not affect the Key.
func NewKey(namespace string, key []byte) Key {
	return Key{namespace: namespace, key: string(key)}
}

func (k Key) Namespace() string { return k.namespace }

// Bytes returns a copy of the key bytes.
func (k Key) Bytes() []byte { return []byte(k.key) }

// Len is the length of the key bytes.
func (k Key) Len() int { return len(k.key) }

func (k Key) String() string {
	return strconv.Quote(k.namespace) + ":" + hex.EncodeToString([]byte(k.key))
}

// weight is the key's share of an entry weight.
func (k Key) weight() int64 {
	return int64(len(k.key) + len(k.namespace)*NamespaceCharWidth)
}

// EntryWeight is the capacity cost of storing a payload of payloadLen bytes under k.
func EntryWeight(k Key, payloadLen int) int64 {
	return int64(payloadLen) + k.weight() + FixedEntryCost
}

package util

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
)

// MaxRawKey is the longest key kept verbatim (base64) in a storage key; longer
// keys are replaced by their SHA-256 digest.
const MaxRawKey = 96

// NamespacePrefix is the storage-key prefix shared by every entry of ns.
// The namespace is length-prefixed so "a" never prefixes "ab".
func NamespacePrefix(prefix, ns string) string {
	var b strings.Builder
	b.Grow(len(prefix) + len(ns) + 12)
	b.WriteString(prefix)
	b.WriteString(":e:")
	b.WriteString(strconv.Itoa(len(ns)))
	b.WriteByte(':')
	b.WriteString(ns)
	b.WriteByte(':')
	return b.String()
}

// EntryKey returns a deterministic storage key for (ns, key).
func EntryKey(prefix, ns string, key []byte) string {
	p := NamespacePrefix(prefix, ns)
	if len(key) > MaxRawKey {
		sum := sha256.Sum256(key)
		return p + "h:" + hex.EncodeToString(sum[:])
	}
	return p + "k:" + base64.RawURLEncoding.EncodeToString(key)
}

// GenKey holds the namespace generation used when the store cannot delete by prefix.
func GenKey(prefix, ns string) string {
	return prefix + ":g:" + strconv.Itoa(len(ns)) + ":" + ns
}

// Package codec turns typed values into the byte payloads a zipcache stores.
// typed.Cache uses a Codec to sit on top of the byte cache.
package codec

import "errors"

// ErrTooLarge is returned by Limit when a payload exceeds its bound.
var ErrTooLarge = errors.New("codec: payload too large")

// Codec encodes/decodes values V to []byte for storage.
// Encode must never return a nil slice for a valid value: the cache reads nil as
// absence.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

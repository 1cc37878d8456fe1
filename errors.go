package zipcache

import (
	"errors"
	"fmt"
)

var (
	// ErrNilValue is returned by Put: absence is expressed by not storing a key.
	ErrNilValue = errors.New("zipcache: nil value")
	// ErrClosed is returned by a closed delegate.Cache. Local keeps serving after
	// Close and never returns it.
	ErrClosed = errors.New("zipcache: cache closed")
)

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("zipcache: config %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("zipcache: config %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

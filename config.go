package zipcache

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/zipcache/compress"
	"github.com/unkn0wn-root/zipcache/executor"
)

// Config is the declarative form of Options. Durations are milliseconds. A
// negative Expiration or MaxSize disables the feature; 0 is a real limit. YAML
// and JSON documents are both accepted.
type Config struct {
	Expiration   int64  `yaml:"expiration" json:"expiration"`
	MaxSize      int64  `yaml:"maxSize" json:"maxSize"`
	EvictOnClose bool   `yaml:"evictOnClose" json:"evictOnClose"`
	Compressor   string `yaml:"compressor" json:"compressor"`
	Shards       int    `yaml:"shards" json:"shards"`
	// SweepInterval of 0 derives the janitor period from Expiration.
	SweepInterval int64 `yaml:"sweepInterval" json:"sweepInterval"`
	// CacheExecutor picks where maintenance runs. "shared" uses a process-wide
	// pool, so a slow eviction hook in one cache delays maintenance of the others.
	CacheExecutor executor.Kind `yaml:"cacheExecutor" json:"cacheExecutor"`
}

func DefaultConfig() Config {
	return Config{
		Expiration:    -1,
		MaxSize:       -1,
		Compressor:    "lz4",
		Shards:        16,
		CacheExecutor: executor.SingleThread,
	}
}

// LoadConfig decodes r over DefaultConfig. Unknown fields are rejected and an
// empty document yields the defaults.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("zipcache: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Shards < 0 {
		return &ConfigError{Field: "shards", Reason: "must not be negative"}
	}
	if c.SweepInterval < 0 {
		return &ConfigError{Field: "sweepInterval", Reason: "must not be negative"}
	}
	if _, err := compress.ByName(c.Compressor); err != nil {
		return &ConfigError{Field: "compressor", Reason: "unknown compressor", Err: err}
	}
	if _, err := executor.ParseKind(string(c.CacheExecutor)); err != nil {
		return &ConfigError{Field: "cacheExecutor", Reason: "unknown executor", Err: err}
	}
	return nil
}

// Options converts c into engine options. Delegate, Logger and Hooks are left
// for the caller to set.
func (c Config) Options() (Options, error) {
	if err := c.Validate(); err != nil {
		return Options{}, err
	}
	comp, _ := compress.ByName(c.Compressor)
	kind, _ := executor.ParseKind(string(c.CacheExecutor))

	o := Options{
		Weighted:      c.MaxSize >= 0,
		MaxWeight:     max(c.MaxSize, 0),
		Expiring:      c.Expiration >= 0,
		Expiration:    millis(c.Expiration),
		EvictOnClose:  c.EvictOnClose,
		Compressor:    comp,
		Shards:        c.Shards,
		SweepInterval: millis(c.SweepInterval),
	}
	switch kind {
	case executor.SharedPool:
		o.Executor = executor.Shared()
	case executor.Inline:
		o.Executor = executor.Direct{}
	}
	return o, nil
}

func millis(ms int64) time.Duration {
	if ms < 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// Package cache stores transform results keyed by input content and
// configuration.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON entries under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for servers and workers
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Keys come from a [Keyer], so every backend sees the same key for the same
// input bytes and configuration:
//
//	k := cache.NewDefaultKeyer()
//	key := k.TransformKey(cache.Hash(input), cache.TransformKeyOpts{Seed: 42, SwapRatio: 1})
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data
//	}
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes. Transform results are pure functions of their
// key, so expiry only bounds disk and memory use.
const (
	TTLTransform = 7 * 24 * time.Hour
	TTLInspect   = 30 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and reports how many were removed.
	Clear(ctx context.Context) (int, error)
}

// TransformKeyOpts is the part of a transform configuration that affects
// its output.
type TransformKeyOpts struct {
	Seed         uint64   `json:"seed"`
	Speed        *float64 `json:"speed,omitempty"`
	Loop         *uint32  `json:"loop,omitempty"`
	SwapRatio    float64  `json:"swap_ratio"`
	SwapDistance int      `json:"swap_distance,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// TransformKey returns the key of a transform output.
	TransformKey(inputHash string, opts TransformKeyOpts) string

	// InspectKey returns the key of an input's section layout.
	InspectKey(inputHash string) string
}

// DefaultKeyer builds keys of the form "kind:hash".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TransformKey hashes the input hash together with opts.
func (DefaultKeyer) TransformKey(inputHash string, opts TransformKeyOpts) string {
	return hashKey("transform", inputHash, opts)
}

// InspectKey depends on the input only.
func (DefaultKeyer) InspectKey(inputHash string) string {
	return "inspect:" + inputHash
}

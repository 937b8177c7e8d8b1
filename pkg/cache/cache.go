// Package cache stores computed layouts and rendered frames between runs.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for multi-instance API deployments
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: caching disabled
//
// All backends implement [Cache]. [Instrumented] wraps any of them to emit
// observability hit, miss and set events.
//
// # Keys
//
// A [Keyer] derives keys from content hashes plus the options that affect the
// result, so a layout computed for one viewport or parameter set is never
// served for another:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.Hash(docJSON), cache.LayoutKeyOpts{Width: 800, Height: 600, Params: cfg})
//
// [ScopedKeyer] prefixes every key for namespace isolation.
package cache

import (
	"context"
	"strings"
	"time"
)

// Default entry lifetimes.
const (
	LayoutTTL  = 7 * 24 * time.Hour
	FrameTTL   = 24 * time.Hour
	SessionTTL = 30 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// =============================================================================
// Keys
// =============================================================================

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies a simulated layout of a graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// FrameKey identifies a rendered frame of a layout.
	FrameKey(layoutHash string, opts FrameKeyOpts) string

	// SessionKey identifies explorer state saved for a layout.
	SessionKey(layoutHash string) string
}

// LayoutKeyOpts are the inputs that change a simulated layout.
type LayoutKeyOpts struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Params any     `json:"params,omitempty"`
}

// FrameKeyOpts are the inputs that change a rendered frame.
type FrameKeyOpts struct {
	Format string  `json:"format"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	K      float64 `json:"k"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Cull   bool    `json:"cull,omitempty"`
	Style  any     `json:"style,omitempty"`
}

// DefaultKeyer hashes options into fixed-length keys prefixed by kind.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

func (DefaultKeyer) FrameKey(layoutHash string, opts FrameKeyOpts) string {
	return hashKey("frame", layoutHash, opts)
}

func (DefaultKeyer) SessionKey(layoutHash string) string {
	return "session:" + layoutHash
}

// KeyType returns the kind prefix of a key ("layout", "frame", ...),
// ignoring any scope prefix.
func KeyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[len(parts)-2]
}

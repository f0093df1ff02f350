// Package store abstracts the backing key-value store behind a narrow
// command interface so handlers and load-generator workers never talk to a
// concrete client directly.
package store

import (
	"context"
	"time"
)

// Store is the command surface the rest of the system depends on. A miss is
// not an error: GetFields returns an empty map and GetValue reports found
// false. Implementations must be safe for concurrent use; handles are
// expected to be cheaply shareable (multiplexed or pooled underneath) so
// every worker can hold one without per-worker setup cost.
type Store interface {
	// GetFields fetches all fields of a hash key. Empty map on miss.
	GetFields(ctx context.Context, key string) (map[string]string, error)
	// GetValue fetches a plain string key.
	GetValue(ctx context.Context, key string) (value string, found bool, err error)
	// SetValue stores a plain string key, with an expiry when ttl > 0.
	SetValue(ctx context.Context, key, value string, ttl time.Duration) error
	// SetFields stores fields into a hash key, creating it if absent.
	SetFields(ctx context.Context, key string, fields map[string]string) error
	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error
	Close() error
}

// Batcher is implemented by stores that can flush many queued writes in one
// round trip. The seeder uses it when available and falls back to
// individual commands otherwise.
type Batcher interface {
	Pipeline(ctx context.Context, fn func(p Pipeliner) error) error
}

// Pipeliner queues writes inside a Batcher.Pipeline call.
type Pipeliner interface {
	SetFields(key string, fields map[string]string)
	SetValue(key, value string, ttl time.Duration)
}

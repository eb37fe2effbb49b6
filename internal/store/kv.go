// Package store is the durable side of the goal tracker.
// A KV backend holds opaque values under string keys; GoalStore keeps the
// whole goal list as one JSON snapshot under a single fixed key.
package store

import "context"

// GoalsKey is the fixed key the goal list snapshot lives under.
const GoalsKey = "ai-goals"

// KV is the minimal key-value contract every backend satisfies.
// Put overwrites any prior value for the key.
type KV interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put stores value under key, replacing whatever was there.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases the backend's resources.
	Close() error
}

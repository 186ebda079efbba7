// Package store provides the expiring key-value store used for job state.
// Entries are written with a per-key TTL and read back until they expire;
// absent and expired keys are indistinguishable.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key is absent or expired.
var ErrNotFound = errors.New("store: key not found")

// Store is the minimal capability the orchestrator needs: per-key atomic
// set with expiry and get. Implementations must be safe for concurrent use.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Package securestore persists the few small secrets the client keeps
// between runs (the session token and the serialized user).
//
// A Store behaves like a platform keychain: Set always overwrites, Delete is
// idempotent, and Get returns (nil, nil) for a key that was never set or has
// been deleted.
package securestore

import (
	"context"
	"errors"
)

// ErrStore wraps every failure of a persistent store.
var ErrStore = errors.New("secure store failure")

// Store keeps small secret values by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

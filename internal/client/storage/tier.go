package storage

import (
	"context"
	"errors"
)

// Keys used in both tiers.
const (
	KeySessionToken  = "session_token"
	KeySessionExpiry = "session_expiry"
	KeyUser          = "user"
	KeyLastActivity  = "last_activity"
)

// ErrCorrupt is returned when a stored value cannot be decoded.
var ErrCorrupt = errors.New("corrupt local value")

// Tier is a flat key/value store.
type Tier interface {
	// Get returns the value for key, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes every key held by the tier.
	Clear(ctx context.Context) error
}

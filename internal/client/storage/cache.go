package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/client/models"
	"github.com/goccy/go-json"
)

var (
	durableKeys   = []string{KeySessionToken, KeySessionExpiry, KeyUser, KeyLastActivity}
	ephemeralKeys = []string{KeySessionToken, KeySessionExpiry, KeyUser}
)

// Snapshot is what a successful sign-in writes to both tiers.
type Snapshot struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Cache is the local session cache over a durable and an ephemeral tier.
// It is the only code that knows which key lives in which tier.
type Cache struct {
	durable   Tier
	ephemeral Tier
}

func NewCache(durable, ephemeral Tier) *Cache {
	return &Cache{durable: durable, ephemeral: ephemeral}
}

// Token returns the durable session token. When the durable tier has none
// and the ephemeral tier does, the ephemeral token is promoted into the
// durable tier together with the stored expiry and user. An empty string
// means no token anywhere.
func (c *Cache) Token(ctx context.Context) (string, error) {
	tok, err := getString(ctx, c.durable, KeySessionToken)
	if err != nil || tok != "" {
		return tok, err
	}

	tok, err = getString(ctx, c.ephemeral, KeySessionToken)
	if err != nil || tok == "" {
		return "", err
	}

	if err := c.promote(ctx, tok); err != nil {
		return "", err
	}
	return tok, nil
}

func (c *Cache) promote(ctx context.Context, tok string) error {
	if err := setJSON(ctx, c.durable, KeySessionToken, tok); err != nil {
		return fmt.Errorf("promote token: %w", err)
	}
	for _, key := range []string{KeySessionExpiry, KeyUser} {
		v, err := c.ephemeral.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("promote %s: %w", key, err)
		}
		if v == nil {
			continue
		}
		if err := c.durable.Set(ctx, key, v); err != nil {
			return fmt.Errorf("promote %s: %w", key, err)
		}
	}
	return nil
}

// SaveSession writes token, expiry and user to both tiers.
func (c *Cache) SaveSession(ctx context.Context, s Snapshot) error {
	for _, t := range []Tier{c.durable, c.ephemeral} {
		if err := setJSON(ctx, t, KeySessionToken, s.Token); err != nil {
			return err
		}
		if err := setJSON(ctx, t, KeySessionExpiry, s.ExpiresAt.UTC()); err != nil {
			return err
		}
		if err := setJSON(ctx, t, KeyUser, s.User.Public()); err != nil {
			return err
		}
	}
	return nil
}

// SaveExpiry mirrors a new session expiry into both tiers.
func (c *Cache) SaveExpiry(ctx context.Context, expiresAt time.Time) error {
	for _, t := range []Tier{c.durable, c.ephemeral} {
		if err := setJSON(ctx, t, KeySessionExpiry, expiresAt.UTC()); err != nil {
			return err
		}
	}
	return nil
}

// Expiry returns the stored session expiry, preferring the durable tier.
func (c *Cache) Expiry(ctx context.Context) (time.Time, bool, error) {
	for _, t := range []Tier{c.durable, c.ephemeral} {
		v, ok, err := getJSON[time.Time](ctx, t, KeySessionExpiry)
		if err != nil || ok {
			return v, ok, err
		}
	}
	return time.Time{}, false, nil
}

// StampActivity records the last user activity in the durable tier.
func (c *Cache) StampActivity(ctx context.Context, at time.Time) error {
	return setJSON(ctx, c.durable, KeyLastActivity, at.UTC())
}

// LastActivity returns the last recorded activity.
func (c *Cache) LastActivity(ctx context.Context) (time.Time, bool, error) {
	return getJSON[time.Time](ctx, c.durable, KeyLastActivity)
}

// BackupUser returns the full-user backup from the ephemeral tier, or nil.
func (c *Cache) BackupUser(ctx context.Context) (*models.User, error) {
	u, _, err := getJSON[*models.User](ctx, c.ephemeral, KeyUser)
	return u, err
}

// SaveBackupUser replaces the ephemeral full-user backup.
func (c *Cache) SaveBackupUser(ctx context.Context, u *models.User) error {
	return setJSON(ctx, c.ephemeral, KeyUser, u.Public())
}

// TakeBackupUser reads the ephemeral full-user backup and discards it.
func (c *Cache) TakeBackupUser(ctx context.Context) (*models.User, error) {
	u, err := c.BackupUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.ephemeral.Delete(ctx, KeyUser); err != nil {
		return nil, err
	}
	return u, nil
}

// ClearDurable removes every session key from the durable tier.
func (c *Cache) ClearDurable(ctx context.Context) error {
	return deleteKeys(ctx, c.durable, durableKeys)
}

// ClearEphemeral removes the session backups from the ephemeral tier.
func (c *Cache) ClearEphemeral(ctx context.Context) error {
	return deleteKeys(ctx, c.ephemeral, ephemeralKeys)
}

// ClearAll empties both tiers of session state. Both tiers are attempted
// even if the first one fails.
func (c *Cache) ClearAll(ctx context.Context) error {
	return errors.Join(c.ClearDurable(ctx), c.ClearEphemeral(ctx))
}

func deleteKeys(ctx context.Context, t Tier, keys []string) error {
	var errs []error
	for _, k := range keys {
		if err := t.Delete(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func setJSON(ctx context.Context, t Tier, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return t.Set(ctx, key, b)
}

func getJSON[T any](ctx context.Context, t Tier, key string) (T, bool, error) {
	var v T
	b, err := t.Get(ctx, key)
	if err != nil || b == nil {
		return v, false, err
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, false, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return v, true, nil
}

func getString(ctx context.Context, t Tier, key string) (string, error) {
	s, _, err := getJSON[string](ctx, t, key)
	return s, err
}

package session

import (
	"context"
)

// Bootstrap restores the session from local storage on start-up. It never
// fails: any problem leaves the controller anonymous with both tiers cleared.
func (c *Controller) Bootstrap(ctx context.Context) {
	token, err := c.cache.Token(ctx)
	if err != nil {
		c.reset(ctx, "read session token", err)
		return
	}

	if token == "" {
		c.restoreFromBackup(ctx)
		return
	}

	sess, err := c.backend.GetSession(ctx, token)
	if err != nil {
		c.reset(ctx, "session lookup", err)
		return
	}
	if !sess.ValidAt(c.now()) {
		c.reset(ctx, "session expired", nil)
		return
	}

	u, err := c.backend.GetUserByID(ctx, sess.UserID)
	if err != nil {
		c.reset(ctx, "user lookup", err)
		return
	}

	c.setUser(u, Authenticated)
	if err := c.cache.SaveBackupUser(ctx, u); err != nil {
		c.log.Warn(ctx, "user backup not saved", "error", err)
	}
	c.log.Info(ctx, "session restored", "user_id", u.ID)
}

// restoreFromBackup handles the no-token case. The backup is consumed
// either way.
func (c *Controller) restoreFromBackup(ctx context.Context) {
	u, err := c.cache.TakeBackupUser(ctx)
	if err != nil {
		c.reset(ctx, "read user backup", err)
		return
	}
	if u == nil || !c.cfg.OptimisticRestore {
		c.setUser(nil, Anonymous)
		return
	}
	c.setUser(u, DegradedRestored)
	c.log.Warn(ctx, "user restored without a session", "user_id", u.ID)
}

func (c *Controller) reset(ctx context.Context, reason string, err error) {
	if err != nil {
		c.log.Warn(ctx, "bootstrap: "+reason, "error", err)
	} else {
		c.log.Info(ctx, "bootstrap: "+reason)
	}
	if err := c.cache.ClearAll(ctx); err != nil {
		c.log.Error(ctx, "clear local session", "error", err)
	}
	c.setUser(nil, Anonymous)
}

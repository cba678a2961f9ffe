package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/client/models"
)

// NotifyActivity records a user interaction. A running keep-alive loop
// refreshes the session when the previous activity is older than
// ActivityThreshold. It never blocks.
func (c *Controller) NotifyActivity() {
	select {
	case c.activity <- struct{}{}:
	default:
	}
}

// StartKeepAlive refreshes the session every RefreshInterval and on
// activity, while a user is present. The loop ends when stop is called,
// when ctx is done, or when the user becomes nil; stop waits for it to
// finish and may be called more than once. Without a user nothing is
// started.
func (c *Controller) StartKeepAlive(ctx context.Context) (stop func()) {
	gone := make(chan struct{})
	var goneOnce sync.Once
	unsubscribe := c.Subscribe(func(u *models.User) {
		if u == nil {
			goneOnce.Do(func() { close(gone) })
		}
	})
	if !c.IsAuthenticated() {
		unsubscribe()
		return func() {}
	}

	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer unsubscribe()
		c.keepAlive(ctx, quit, gone)
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(quit) })
		<-done
	}
}

func (c *Controller) keepAlive(ctx context.Context, quit, gone <-chan struct{}) {
	ticker := time.NewTicker(c.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-quit:
			return
		case <-gone:
			return
		case <-ticker.C:
			c.RefreshSession(ctx)
		case <-c.activity:
			if c.idle(ctx) {
				c.RefreshSession(ctx)
			}
		}
	}
}

// idle reports whether the last recorded activity is older than the
// threshold. A missing record counts as idle.
func (c *Controller) idle(ctx context.Context) bool {
	last, ok, err := c.cache.LastActivity(ctx)
	if err != nil {
		c.log.Warn(ctx, "read last activity", "error", err)
		return true
	}
	return !ok || c.now().Sub(last) > c.cfg.ActivityThreshold
}

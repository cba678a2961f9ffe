package session

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/client/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.RefreshInterval = 10 * time.Millisecond
	return cfg
}

func TestStartKeepAlive_NoUserStartsNothing(t *testing.T) {
	h := newHarness(t)

	stop := h.ctrl.StartKeepAlive(context.Background())
	stop()
	stop()

	assert.Zero(t, h.backend.extendCalls())
}

func TestStartKeepAlive_RefreshesOnTick(t *testing.T) {
	h, _ := signedIn(t)
	ctrl := h.reload(fastConfig())
	ctrl.Bootstrap(context.Background())
	require.True(t, ctrl.IsAuthenticated())

	stop := ctrl.StartKeepAlive(context.Background())
	defer stop()

	require.Eventually(t, func() bool { return h.backend.extendCalls() >= 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestStartKeepAlive_StopsWhenUserBecomesNil(t *testing.T) {
	h, _ := signedIn(t)
	ctrl := h.reload(fastConfig())
	ctrl.Bootstrap(context.Background())

	stop := ctrl.StartKeepAlive(context.Background())
	ctrl.SignOut(context.Background())

	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("keep-alive did not stop")
	}

	calls := h.backend.extendCalls()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, h.backend.extendCalls(), "no refresh after the loop ended")

	ctrl.subMu.Lock()
	defer ctrl.subMu.Unlock()
	assert.Empty(t, ctrl.subs, "subscription released")
}

func TestStartKeepAlive_StopsOnContextDone(t *testing.T) {
	h, _ := signedIn(t)
	ctx, cancel := context.WithCancel(context.Background())

	stop := h.ctrl.StartKeepAlive(ctx)
	cancel()
	stop()

	h.ctrl.subMu.Lock()
	defer h.ctrl.subMu.Unlock()
	assert.Empty(t, h.ctrl.subs)
}

func TestNotifyActivity_RefreshesOnlyAfterThreshold(t *testing.T) {
	h, _ := signedIn(t)
	ctx := context.Background()
	cfg := DefaultConfig() // ticks every 10 minutes, so only activity refreshes here
	ctrl := h.reload(cfg)
	ctrl.Bootstrap(ctx)

	base := time.Now()
	now := base
	ctrl.now = func() time.Time { return now }
	cache := storage.NewCache(h.durable, h.ephemeral)
	require.NoError(t, cache.StampActivity(ctx, base))

	stop := ctrl.StartKeepAlive(ctx)
	defer func() { stop() }()

	// recent activity: nothing to do
	ctrl.NotifyActivity()
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, h.backend.extendCalls())

	stop()
	now = base.Add(6 * time.Minute)
	stop = ctrl.StartKeepAlive(ctx)

	ctrl.NotifyActivity()
	require.Eventually(t, func() bool { return h.backend.extendCalls() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestNotifyActivity_NeverBlocks(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 10; i++ {
		h.ctrl.NotifyActivity()
	}
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/client/client"
	"github.com/dmitrijs2005/accountkeeper/internal/client/config"
	"github.com/dmitrijs2005/accountkeeper/internal/client/models"
	"github.com/dmitrijs2005/accountkeeper/internal/client/session"
	"github.com/dmitrijs2005/accountkeeper/internal/client/storage"
	"github.com/dmitrijs2005/accountkeeper/internal/cryptox"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// controller is the part of session.Controller the CLI drives.
type controller interface {
	Bootstrap(ctx context.Context)
	SignUp(ctx context.Context, email, password, firstName, lastName string) (session.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context)
	ResendVerification(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, token string) error
	RefreshSession(ctx context.Context)
	RefreshUserData(ctx context.Context)
	User() *models.User
	State() session.State
	SessionExpiry(ctx context.Context) (time.Time, bool)
	StartKeepAlive(ctx context.Context) (stop func())
	NotifyActivity()
}

type App struct {
	config  *config.Config
	ctrl    controller
	backend client.Backend
	log     logging.Logger
	in      io.Reader
	reader  *bufio.Reader
	out     io.Writer
	closers []func() error

	mu            sync.Mutex
	mode          Mode
	stopKeepAlive func()
}

// NewApp opens the local database, connects the ephemeral tier, and wires
// the session controller.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log, err := logging.New(c.LogBackend, "accountkeeper-cli", os.Stderr)
	if err != nil {
		return nil, err
	}

	a := &App{
		config: c,
		log:    log,
		in:     os.Stdin,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	durable := storage.NewSQLiteTier(db)
	ephemeral, err := a.ephemeralTier(ctx, durable)
	if err != nil {
		_ = a.close()
		return nil, err
	}

	rest := client.NewRESTClient(c.RESTEndpoint, c.APIKey, c.RequestTimeout)
	if c.HealthAddr != "" {
		h, err := client.NewHealthChecker(c.HealthAddr)
		if err != nil {
			_ = a.close()
			return nil, err
		}
		rest.WithHealth(h)
	}
	a.backend = rest
	a.closers = append(a.closers, rest.Close)

	cache := storage.NewCache(durable, ephemeral)
	a.ctrl = session.NewController(rest, cache, cryptox.NewBcryptHasher(cryptox.DefaultCost), a, log, c.SessionConfig())

	return a, nil
}

// ephemeralTier builds the configured ephemeral tier. Redis keys are scoped
// to this install by the instance id kept in durable.
func (a *App) ephemeralTier(ctx context.Context, durable storage.Tier) (storage.Tier, error) {
	switch a.config.EphemeralTier {
	case "", config.TierMemory:
		return storage.NewMemoryTier(), nil
	case config.TierRedis:
		id, err := storage.InstanceID(ctx, durable)
		if err != nil {
			return nil, err
		}
		rdb, err := storage.DialRedis(ctx, a.config.RedisAddr, a.config.RedisPassword, a.config.RedisDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		return storage.NewRedisTier(rdb, storage.RedisPrefix(id), a.config.SessionTTL)
	default:
		return nil, fmt.Errorf("unknown ephemeral tier %q", a.config.EphemeralTier)
	}
}

// Run restores the session, starts the watchers and blocks in the REPL.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		a.stopKeepAliveLoop()
		if err := a.close(); err != nil {
			a.log.Warn(ctx, "close", "error", err)
		}
	}()

	printlnFn("Welcome to the account CLI (type 'help' for commands)")

	a.ctrl.Bootstrap(ctx)
	if u := a.ctrl.User(); u != nil {
		printlnFn(fmt.Sprintf("Restored session for %s (%s)", u.Email, a.ctrl.State()))
		a.startKeepAlive(ctx)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Reset is the hard reset performed after sign-out: background work for the
// old user stops and any buffered input is dropped.
func (a *App) Reset(path string) {
	a.stopKeepAliveLoop()
	if a.reader != nil && a.in != nil {
		a.reader.Reset(a.in)
	}
	a.log.Debug(context.Background(), "navigation reset", "path", path)
}

func (a *App) startKeepAlive(ctx context.Context) {
	a.stopKeepAliveLoop()
	stop := a.ctrl.StartKeepAlive(ctx)
	a.mu.Lock()
	a.stopKeepAlive = stop
	a.mu.Unlock()
}

func (a *App) stopKeepAliveLoop() {
	a.mu.Lock()
	stop := a.stopKeepAlive
	a.stopKeepAlive = nil
	a.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (a *App) isLoggedIn() bool {
	return a.ctrl.User() != nil
}

func (a *App) notifyActivity() {
	a.ctrl.NotifyActivity()
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

// getStatus renders the prompt status, e.g. "(alice@example.com online)".
func (a *App) getStatus() string {
	s := ""
	if u := a.ctrl.User(); u != nil {
		s = u.Email + " "
	}
	s += string(a.Mode())
	if s == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", s)
}

// StartOnlineStatusWatcher pings the backend every interval and flips Mode.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.backend.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

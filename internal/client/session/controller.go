package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/client/client"
	"github.com/dmitrijs2005/accountkeeper/internal/client/models"
	"github.com/dmitrijs2005/accountkeeper/internal/client/storage"
	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/cryptox"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
)

// SignUpResult is returned by a successful SignUp.
type SignUpResult struct {
	// NeedsVerification is always true: sign-up never creates a session.
	NeedsVerification bool
}

// Controller manages the customer session. It is safe for concurrent use.
type Controller struct {
	backend client.Backend
	cache   *storage.Cache
	hasher  cryptox.PasswordHasher
	nav     Navigator
	log     logging.Logger
	cfg     Config

	now      func() time.Time
	newToken func() (string, error)

	mu    sync.RWMutex
	user  *models.User
	state State
	// gen changes on every user transition so that late responses can
	// tell they are stale.
	gen uint64

	subMu   sync.Mutex
	subs    map[int]func(*models.User)
	nextSub int

	activity chan struct{}
}

// NewController wires a controller. A nil nav or log is replaced by a no-op.
func NewController(backend client.Backend, cache *storage.Cache, hasher cryptox.PasswordHasher,
	nav Navigator, log logging.Logger, cfg Config) *Controller {
	if nav == nil {
		nav = nopNavigator{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Controller{
		backend:  backend,
		cache:    cache,
		hasher:   hasher,
		nav:      nav,
		log:      log.With("module", "session"),
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		newToken: common.NewSessionToken,
		subs:     make(map[int]func(*models.User)),
		activity: make(chan struct{}, 1),
	}
}

// User returns the current user, or nil when anonymous. The returned value
// is a copy.
func (c *Controller) User() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// IsAuthenticated reports whether a user is present.
func (c *Controller) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user != nil
}

// State returns the current authentication state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SessionExpiry returns the locally stored session expiry. ok is false when
// none is stored or it cannot be read.
func (c *Controller) SessionExpiry(ctx context.Context) (time.Time, bool) {
	exp, ok, err := c.cache.Expiry(ctx)
	if err != nil {
		c.log.Warn(ctx, "read session expiry", "error", err)
		return time.Time{}, false
	}
	return exp, ok
}

// Subscribe registers fn to be called with every new user value (nil on
// sign-out). The returned func removes the subscription.
func (c *Controller) Subscribe(fn func(*models.User)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

func (c *Controller) setUser(u *models.User, st State) {
	c.mu.Lock()
	c.user = u.Public()
	if u == nil {
		st = Anonymous
	}
	c.state = st
	c.gen++
	c.mu.Unlock()
	c.notify(u.Public())
}

func (c *Controller) notify(u *models.User) {
	c.subMu.Lock()
	fns := make([]func(*models.User), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}

// SignUp creates an unverified account and asks the backend to send the
// verification email. No session is created.
func (c *Controller) SignUp(ctx context.Context, email, password, firstName, lastName string) (SignUpResult, error) {
	hash, err := c.hasher.Hash([]byte(password))
	if err != nil {
		return SignUpResult{}, err
	}

	_, err = c.backend.InsertUser(ctx, models.NewUser{
		Email:         email,
		PasswordHash:  hash,
		FirstName:     firstName,
		LastName:      lastName,
		EmailVerified: false,
	})
	if err != nil {
		if errors.Is(err, client.ErrDuplicateKey) {
			return SignUpResult{}, ErrEmailExists
		}
		return SignUpResult{}, err
	}

	if err := c.backend.SendVerificationEmail(ctx, email, firstName); err != nil {
		c.log.Warn(ctx, "verification email not sent", "email", email, "error", err)
	}

	c.log.Info(ctx, "account created", "email", email)
	return SignUpResult{NeedsVerification: true}, nil
}

// SignIn authenticates a verified user, opens a remote session and writes
// it to both local tiers.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	u, err := c.backend.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if !u.EmailVerified {
		return ErrEmailNotVerified
	}

	if !c.hasher.Compare(u.PasswordHash, []byte(password)) {
		return ErrInvalidCredentials
	}

	token, err := c.newToken()
	if err != nil {
		return fmt.Errorf("generate session token: %w", err)
	}

	now := c.now()
	expiresAt := now.Add(c.cfg.SessionTTL)

	err = c.backend.CreateSession(ctx, models.Session{
		Token:        token,
		UserID:       u.ID,
		ExpiresAt:    expiresAt,
		LastActivity: now,
	})
	if err != nil {
		return err
	}

	if err := c.cache.SaveSession(ctx, storage.Snapshot{Token: token, ExpiresAt: expiresAt, User: u}); err != nil {
		c.log.Error(ctx, "session not saved locally", "user_id", u.ID, "error", err)
	}
	if err := c.cache.StampActivity(ctx, now); err != nil {
		c.log.Warn(ctx, "activity not stamped", "error", err)
	}

	c.setUser(u, Authenticated)
	c.log.Info(ctx, "signed in", "user_id", u.ID)
	return nil
}

// SignOut always succeeds from the caller's point of view. The remote
// session is deleted on a best-effort basis; local state is cleared
// regardless, and the navigator is reset to the root.
func (c *Controller) SignOut(ctx context.Context) {
	token, err := c.cache.Token(ctx)
	if err != nil {
		c.log.Warn(ctx, "read session token", "error", err)
	}

	if token != "" {
		if err := c.backend.DeleteSession(ctx, token); err != nil {
			c.log.Warn(ctx, "remote session not deleted", "error", err)
		}
	}

	if err := c.cache.ClearDurable(ctx); err != nil {
		c.log.Error(ctx, "clear durable session", "error", err)
	}
	if err := c.cache.ClearEphemeral(ctx); err != nil {
		c.log.Error(ctx, "clear session backups", "error", err)
	}

	c.setUser(nil, Anonymous)
	c.log.Info(ctx, "signed out")
	c.nav.Reset("/")
}

// ResendVerification asks the backend to send another verification email.
func (c *Controller) ResendVerification(ctx context.Context, email string) error {
	return c.backend.SendVerificationEmail(ctx, email, "")
}

// VerifyEmail consumes a verification token. The user still has to sign in
// afterwards.
func (c *Controller) VerifyEmail(ctx context.Context, token string) error {
	ok, err := c.backend.VerifyUserEmail(ctx, token)
	if err != nil {
		c.log.Warn(ctx, "verify_user_email failed", "error", err)
		return ErrInvalidVerificationToken
	}
	if !ok {
		return ErrInvalidVerificationToken
	}
	return nil
}

// RefreshSession pushes the session expiry SessionTTL into the future. It
// does nothing without both a token and a user, and never fails.
func (c *Controller) RefreshSession(ctx context.Context) {
	if !c.IsAuthenticated() {
		return
	}

	token, err := c.cache.Token(ctx)
	if err != nil {
		c.log.Warn(ctx, "read session token", "error", err)
		return
	}
	if token == "" {
		return
	}

	now := c.now()
	expiresAt := now.Add(c.cfg.SessionTTL)

	if err := c.backend.ExtendSession(ctx, token, expiresAt, now); err != nil {
		c.log.Warn(ctx, "session not refreshed", "error", err)
		return
	}

	if err := c.cache.SaveExpiry(ctx, expiresAt); err != nil {
		c.log.Warn(ctx, "expiry not saved", "error", err)
	}
	if err := c.cache.StampActivity(ctx, now); err != nil {
		c.log.Warn(ctx, "activity not stamped", "error", err)
	}
	c.log.Debug(ctx, "session refreshed", "expires_at", expiresAt)
}

// RefreshUserData refetches the current user. A response that arrives after
// the user changed (for example after sign-out) is dropped.
func (c *Controller) RefreshUserData(ctx context.Context) {
	c.mu.RLock()
	cur, gen, st := c.user, c.gen, c.state
	c.mu.RUnlock()
	if cur == nil || cur.ID == "" {
		return
	}

	u, err := c.backend.GetUserByID(ctx, cur.ID)
	if err != nil {
		c.log.Warn(ctx, "user data not refreshed", "user_id", cur.ID, "error", err)
		return
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		c.log.Debug(ctx, "stale user data dropped", "user_id", cur.ID)
		return
	}
	c.user = u.Public()
	c.state = st
	c.gen++
	c.mu.Unlock()
	c.notify(u.Public())

	if err := c.cache.SaveBackupUser(ctx, u); err != nil {
		c.log.Warn(ctx, "user backup not saved", "error", err)
	}
}

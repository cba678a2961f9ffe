package session

import "time"

// State is the observable authentication state.
type State int

const (
	Anonymous State = iota
	Authenticated
	// DegradedRestored means a user was restored from the ephemeral backup
	// without a validated session token.
	DegradedRestored
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case DegradedRestored:
		return "restored"
	default:
		return "unknown"
	}
}

// Defaults for Config.
const (
	DefaultSessionTTL        = 30 * 24 * time.Hour
	DefaultRefreshInterval   = 10 * time.Minute
	DefaultActivityThreshold = 5 * time.Minute
)

// Config holds the controller timings.
type Config struct {
	// SessionTTL is how far from now a session expires on sign-in and refresh.
	SessionTTL time.Duration
	// RefreshInterval is the keep-alive tick.
	RefreshInterval time.Duration
	// ActivityThreshold is the idle time after which activity triggers a refresh.
	ActivityThreshold time.Duration
	// OptimisticRestore lets Bootstrap show a user from the ephemeral backup
	// when no session token is left.
	OptimisticRestore bool
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		SessionTTL:        DefaultSessionTTL,
		RefreshInterval:   DefaultRefreshInterval,
		ActivityThreshold: DefaultActivityThreshold,
		OptimisticRestore: true,
	}
}

func (c Config) withDefaults() Config {
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.ActivityThreshold <= 0 {
		c.ActivityThreshold = DefaultActivityThreshold
	}
	return c
}

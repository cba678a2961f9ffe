package config

import (
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/client/session"
)

// Config holds runtime settings for the account CLI.
type Config struct {
	// RESTEndpoint is the base URL of the account backend's REST API.
	RESTEndpoint string
	// HealthAddr is host:port of the backend gRPC health service. Empty
	// makes Ping fall back to an HTTP request.
	HealthAddr string
	// APIKey is the anon key sent as apikey and bearer token.
	APIKey string
	// DatabasePath is the local SQLite file backing the durable tier.
	DatabasePath string
	// EphemeralTier selects the backup tier: "memory" or "redis".
	EphemeralTier string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionTTL          time.Duration
	RefreshInterval     time.Duration
	ActivityThreshold   time.Duration
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	OptimisticRestore   bool

	// LogBackend is "text", "slog" or "zap".
	LogBackend string
}

// Ephemeral tier names.
const (
	TierMemory = "memory"
	TierRedis  = "redis"
)

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.RESTEndpoint = "http://127.0.0.1:8080"
	c.HealthAddr = "127.0.0.1:50051"
	c.APIKey = ""
	c.DatabasePath = "data/session.db"
	c.EphemeralTier = TierMemory
	c.RedisAddr = "127.0.0.1:6379"
	c.SessionTTL = session.DefaultSessionTTL
	c.RefreshInterval = session.DefaultRefreshInterval
	c.ActivityThreshold = session.DefaultActivityThreshold
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.OptimisticRestore = true
	c.LogBackend = "text"
}

// SessionConfig returns the controller timings.
func (c *Config) SessionConfig() session.Config {
	return session.Config{
		SessionTTL:        c.SessionTTL,
		RefreshInterval:   c.RefreshInterval,
		ActivityThreshold: c.ActivityThreshold,
		OptimisticRestore: c.OptimisticRestore,
	}
}

// LoadConfig constructs a Config from defaults, then the JSON file named by
// -c/-config in args, then flags in args. Later sources win.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg, args)
	parseFlags(cfg, args)
	return cfg
}

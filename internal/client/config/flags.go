package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   backend REST base URL
//	-g string   backend gRPC health address
//	-k string   anon API key
//	-d string   local database path
//	-e string   ephemeral tier: memory or redis
//	-r string   redis address
//	-t int      session TTL (in hours)
//	-i int      refresh interval (in minutes)
//	-m int      activity threshold (in minutes)
//	-o int      online check interval (in seconds)
//	-l string   log backend: text, slog or zap
//
// Arguments are filtered with flagx.FilterArgs first, so the REPL and the
// JSON loader can share the same command line.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-k", "-d", "-e", "-r", "-t", "-i", "-m", "-o", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.RESTEndpoint, "a", cfg.RESTEndpoint, "backend REST base URL")
	fs.StringVar(&cfg.HealthAddr, "g", cfg.HealthAddr, "backend gRPC health address")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "anon API key")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.EphemeralTier, "e", cfg.EphemeralTier, "ephemeral tier (memory|redis)")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address")
	sessionTTL := fs.Int("t", int(cfg.SessionTTL.Hours()), "session TTL (in hours)")
	refreshInterval := fs.Int("i", int(cfg.RefreshInterval.Minutes()), "refresh interval (in minutes)")
	activityThreshold := fs.Int("m", int(cfg.ActivityThreshold.Minutes()), "activity threshold (in minutes)")
	onlineCheckInterval := fs.Int("o", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.LogBackend, "l", cfg.LogBackend, "log backend (text|slog|zap)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only explicit flags touch durations, so "90s" from JSON survives
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.SessionTTL = time.Duration(*sessionTTL) * time.Hour
		case "i":
			cfg.RefreshInterval = time.Duration(*refreshInterval) * time.Minute
		case "m":
			cfg.ActivityThreshold = time.Duration(*activityThreshold) * time.Minute
		case "o":
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
}

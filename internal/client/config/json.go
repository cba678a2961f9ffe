package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
	"github.com/dmitrijs2005/accountkeeper/internal/timex"
	"github.com/goccy/go-json"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Durations are
// timex.Duration, so the file can say "10m" or give integer nanoseconds.
type JSONConfig struct {
	RESTEndpoint        string         `json:"rest_endpoint"`
	HealthAddr          string         `json:"health_addr"`
	APIKey              string         `json:"api_key"`
	DatabasePath        string         `json:"database_path"`
	EphemeralTier       string         `json:"ephemeral_tier"`
	RedisAddr           string         `json:"redis_addr"`
	RedisPassword       string         `json:"redis_password"`
	RedisDB             int            `json:"redis_db"`
	SessionTTL          timex.Duration `json:"session_ttl"`
	RefreshInterval     timex.Duration `json:"refresh_interval"`
	ActivityThreshold   timex.Duration `json:"activity_threshold"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	OptimisticRestore   *bool          `json:"optimistic_restore"`
	LogBackend          string         `json:"log_backend"`
}

// parseJSON overlays cfg with the JSON file named by -c or -config in args.
// Fields missing from the file keep their current value. Read and decode
// errors panic, matching parseFlags.
func parseJSON(cfg *Config, args []string) {
	path := flagx.JSONConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.RESTEndpoint, jc.RESTEndpoint)
	setString(&cfg.HealthAddr, jc.HealthAddr)
	setString(&cfg.APIKey, jc.APIKey)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.EphemeralTier, jc.EphemeralTier)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.RedisPassword, jc.RedisPassword)
	setString(&cfg.LogBackend, jc.LogBackend)
	if jc.RedisDB != 0 {
		cfg.RedisDB = jc.RedisDB
	}
	setDuration(&cfg.SessionTTL, jc.SessionTTL)
	setDuration(&cfg.RefreshInterval, jc.RefreshInterval)
	setDuration(&cfg.ActivityThreshold, jc.ActivityThreshold)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	if jc.OptimisticRestore != nil {
		cfg.OptimisticRestore = *jc.OptimisticRestore
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}

package config

import (
	"os"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
	"github.com/dmitrijs2005/accountkeeper/internal/timex"
)

// JSONConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
//
// This struct is an intermediate DTO (Data Transfer Object) used only for
// reading JSON configuration files. After unmarshalling, its non-empty fields
// are copied into the runtime Config struct which uses time.Duration.
type JSONConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	AMQPURI          string         `json:"amqp_uri"`
	AMQPQueue        string         `json:"amqp_queue"`
	VerificationTTL  timex.Duration `json:"verification_ttl"`
	LogBackend       string         `json:"log_backend"`
}

// parseJSON loads configuration values from the JSON file named by the -c or
// -config flag in args. Without the flag nothing is loaded. If the file
// cannot be read or contains invalid JSON, the function panics.
func parseJSON(config *Config, args []string) {
	jsonConfigFile := flagx.JSONConfigPath(args)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JSONConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AMQPURI, c.AMQPURI)
	setString(&config.AMQPQueue, c.AMQPQueue)
	setString(&config.LogBackend, c.LogBackend)
	if c.VerificationTTL.Duration != 0 {
		config.VerificationTTL = c.VerificationTTL.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/flagx"
	"github.com/dmitrijs2005/credkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations
// accept strings such as "90s" or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	FailureLimit                int            `json:"failure_limit"`
	BlockWindow                 timex.Duration `json:"block_window"`
	CipherKey                   string         `json:"cipher_key"`
	HashWorkers                 int            `json:"hash_workers"`
	RedisAddr                   string         `json:"redis_addr"`
	AttemptLockTTL              timex.Duration `json:"attempt_lock_ttl"`
}

// parseJson overlays values from the file named by -c / -config. Keys that
// are absent keep their current value. Unreadable or invalid files panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JSONConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	setInt(&config.FailureLimit, c.FailureLimit)
	setDuration(&config.BlockWindow, c.BlockWindow.Duration)
	setString(&config.CipherKey, c.CipherKey)
	setInt(&config.HashWorkers, c.HashWorkers)
	setString(&config.RedisAddr, c.RedisAddr)
	setDuration(&config.AttemptLockTTL, c.AttemptLockTTL.Duration)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

package config

import "time"

// Config holds runtime settings for credctl.
//
// Fields:
//   - ServerEndpointAddr: host:port of the credkeeper gRPC endpoint.
//   - CipherKey: passphrase used by "seal"; must match the server's.
//   - RequestTimeout: deadline applied to each RPC.
type Config struct {
	ServerEndpointAddr string
	CipherKey          string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.CipherKey = "cipherKey"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

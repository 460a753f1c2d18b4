// Package config loads runtime configuration for credctl.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the credkeeper gRPC endpoint
//	-k string   cipher key used by "credctl seal"
//	-t int      per-request timeout (seconds)
//
// # JSON schema
//
// Durations accept strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "cipher_key": "cipherKey",
//	  "request_timeout": "10s"
//	}
package config

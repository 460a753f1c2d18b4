package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   database DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-l int      failures before lockout
//	-w int      lockout window, seconds
//	-k string   API token cipher passphrase
//	-n int      concurrent hash workers
//	-r string   Redis address for the attempt lock (empty disables it)
//	-x int      attempt lock TTL, seconds
//
// Unrecognized arguments are dropped with flagx.FilterArgs first.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-l", "-w", "-k", "-n", "-r", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.IntVar(&config.FailureLimit, "l", config.FailureLimit, "failed attempts before lockout")
	blockWindow := fs.Int("w", int(config.BlockWindow.Seconds()), "lockout window (in seconds)")

	fs.StringVar(&config.CipherKey, "k", config.CipherKey, "API token cipher key")
	fs.IntVar(&config.HashWorkers, "n", config.HashWorkers, "concurrent hash workers")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address for attempt locking")
	attemptLockTTL := fs.Int("x", int(config.AttemptLockTTL.Seconds()), "attempt lock TTL (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.BlockWindow = time.Duration(*blockWindow) * time.Second
	config.AttemptLockTTL = time.Duration(*attemptLockTTL) * time.Second
}

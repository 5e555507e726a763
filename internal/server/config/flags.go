package config

import (
	"flag"
	"os"
	"time"

	"github.com/mikaelsv/kontakta/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   token signing secret key
//	-t int      session token validity, hours
//	-n int      store connection attempts (total, including the first)
//	-r int      delay between connection attempts, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-n", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Hours()), "token validity duration (in hours)")
	fs.Uint64Var(&config.ConnectAttempts, "n", config.ConnectAttempts, "store connection attempts")
	retryDelay := fs.Int("r", int(config.ConnectRetryDelay.Seconds()), "store connection retry delay (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Hour
	config.ConnectRetryDelay = time.Duration(*retryDelay) * time.Second
}

package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-s", "-t", "-l", "-b", "-k"}

// parseFlags overlays Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN; empty keeps the in-memory store
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes (0 = no expiry)
//	-l string   log level
//	-b string   books seed file (JSON)
//	-k int      bcrypt cost
//
// Arguments are first narrowed with flagx.FilterArgs so that -c/-config and
// flags owned by other components do not trip the parser.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.BooksSeedFile, "b", config.BooksSeedFile, "books seed file")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}

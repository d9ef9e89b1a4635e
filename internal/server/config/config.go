// Package config handles configuration for the bookshelf server,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/flagx"
)

// Config holds runtime settings for the bookshelf server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration: token lifetime; zero issues non-expiring tokens.
//   - LogLevel: debug, info, warn or error.
//   - BooksSeedFile: optional JSON file with books inserted at startup.
//   - BcryptCost: work factor for password hashes.
type Config struct {
	EndpointAddrHTTP            string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	LogLevel                    string
	BooksSeedFile               string
	BcryptCost                  int
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.LogLevel = "info"
	c.BooksSeedFile = ""
	c.BcryptCost = 10
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, flagx.ConfigFile(os.Args[1:]))
	parseFlags(cfg, os.Args[1:])
	return cfg
}

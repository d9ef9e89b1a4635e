package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/bookshelf/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations
// accept "15m" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	LogLevel                    *string         `json:"log_level"`
	BooksSeedFile               *string         `json:"books_seed_file"`
	BcryptCost                  *int            `json:"bcrypt_cost"`
}

// parseJson overlays the values present in the JSON file at path onto
// config. Keys missing from the file leave the current value untouched.
// An empty path is a no-op; an unreadable or invalid file panics.
func parseJson(config *Config, path string) {
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != nil {
		config.EndpointAddrHTTP = *c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
	if c.BooksSeedFile != nil {
		config.BooksSeedFile = *c.BooksSeedFile
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
}

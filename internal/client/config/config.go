// Package config handles configuration for the Kontakta CLI client.
package config

import "time"

// Config holds runtime settings for the Kontakta CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend HTTP endpoint.
//   - DatabasePath: path to the local SQLite session database.
//   - TokenBackupPath: path to the fallback token file. The session layer
//     writes the token to both places and reads whichever survives.
//   - RequestTimeout: per-request timeout for server calls.
type Config struct {
	ServerEndpointAddr string
	DatabasePath       string
	TokenBackupPath    string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DatabasePath = "kontakta.db"
	c.TokenBackupPath = ".kontakta_token"
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

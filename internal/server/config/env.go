package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays Config fields from environment variables, using the
// struct's `env` tags (KONTAKTA_ prefix). Unset variables leave the current
// values untouched.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: "KONTAKTA_"}); err != nil {
		panic(err)
	}
}

package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// parseEnv overlays values from the process environment onto cfg. A .env file
// in the working directory is loaded first if present; absence is not an
// error. Variables that are unset leave the corresponding field untouched.
func parseEnv(cfg *Config) error {
	_ = godotenv.Load()
	return env.Parse(cfg)
}

// Package config loads typed configuration from the environment.
//
// It wraps github.com/joho/godotenv (optional .env file) and
// github.com/caarlos0/env/v11 (struct tags). Each configuration type is parsed
// once per process and cached; MustLoad panics so a broken deployment fails
// at startup rather than on first use.
//
//	var cfg tenancy.Config
//	config.MustLoad(&cfg)
//	opts := cfg.Options()
package config

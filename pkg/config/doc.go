// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - LoadEnv reads one or more .env files into the process environment
//     (the default .env is read lazily, and silently skipped when missing).
//   - Load parses the environment into any struct annotated with `env` tags
//     and caches the result per type, so every package that asks for the same
//     configuration type sees the same values.
//   - Parse does the same without touching the cache; use it when the
//     environment is expected to change, for example in tests.
//   - MustLoad panics on failure for configuration the binary cannot run
//     without.
//
// # Usage
//
//	var cfg detectkit.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Errors wrap ErrParsingConfig; a nil destination returns ErrNilPointer.
package config

// Package config loads and validates the streamkit CLI configuration.
//
// Values come from a config.yml file, a .env file and the process
// environment, in increasing priority. Environment variables address nested
// keys with underscores, e.g. STREAM_WORKERS or LOGGING_LEVEL.
//
//	cfg, err := config.LoadApp(config.WithConfigFile("config.yml"))
//
// Struct constraints are declared with go-playground/validator tags and
// reported as INVALID_CONFIG errors.
package config

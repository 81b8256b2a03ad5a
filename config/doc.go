// Package config loads client defaults from YAML files and the environment.
//
// It uses Viper for file parsing and godotenv for .env files. Environment
// variables override file values; UPPER_SNAKE names are bound to every
// nested key they may address (e.g. BASE_URL -> base_url,
// CLIENT_BASE_URL -> client.base_url).
//
// # Usage
//
//	cc, err := config.Load("payments-api")
//	defaults := request.FromClientConfig(cc, adapter)
package config

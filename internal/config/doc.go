// Package config loads and validates the service configuration from the
// environment, with optional .env support for local development.
package config

// Package config resolves the relay service configuration from compiled-in
// defaults and an environment store (process variables layered over an
// optional .env file). Resolution happens once at startup; the resulting
// *Config is read-only and is passed explicitly to every component that
// needs it.
//
// Malformed numbers fall back to their defaults and range-limited values
// are clamped. The only fatal condition is a TLS file that is referenced by
// path but cannot be read, reported as a *LoadError.
package config

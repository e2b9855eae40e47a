// Package config loads server settings from an optional config.yaml, a .env
// file and HANZI_-prefixed environment variables, applies defaults and
// validates the result before any component is constructed.
package config

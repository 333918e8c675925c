// Package config loads the server configuration.
//
// Values are resolved in this order, later sources winning:
//
//  1. built-in defaults
//  2. an optional YAML file (config.yaml in the working directory, or --config)
//  3. a .env file, loaded into the process environment without overriding it
//  4. the process environment (GOOGLE_CLIENT_ID, DEFAULT_TIMEZONE, ...)
//
// Command-line flags are applied by the cmd package on top of the result.
package config

// Package config loads settings from a TOML file. Every field has a
// working default so the CLI runs with no config file at all; flags
// override whatever the file provides.
package config

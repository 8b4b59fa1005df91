// Package config provides the run configuration for htmlgrader and the
// optional YAML settings file that supplies per-host request headers.
package config

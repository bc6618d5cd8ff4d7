// Package config defines configuration for domainscan: which
// techniques run, resource limits, network timeouts, and file/flag
// loading. Settings layer in order: built-in defaults, then the
// optional .domainscan YAML file, then CLI flags.
package config

// Package config loads and validates the bridge's YAML configuration.
//
// Configuration is resolved in three layers: hardcoded defaults, the YAML
// file, then FRONIUS_* environment variable overrides (used for secrets so
// credentials stay out of the config file). Validation collects every
// problem into a single error so a misconfigured deployment reports all
// issues on the first failed start.
//
// Validation happens before any component is constructed - by the time the
// bridge controller runs, the configuration is known good, which is why the
// core treats malformed configuration as unreachable.
package config

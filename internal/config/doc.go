// Package config provides configuration structures and utilities for the
// scraper. It defines the session options for discovery scoping, output
// organization, extraction, and report generation, along with the YAML
// configuration file format and its per-host overrides.
package config

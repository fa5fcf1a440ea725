// Package config provides configuration structures and utilities for wikirace.
// It defines the content API endpoint, fetch and timer settings, the article
// cache, the challenge catalog override and report preferences, and loads
// them from defaults, a YAML file and WIKIRACE_* environment variables.
package config

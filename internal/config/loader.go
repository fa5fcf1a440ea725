package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/wikirace/internal/challenge"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".wikirace"

// File represents the structure of the .wikirace configuration file.
// Zero values mean "not set" and leave the corresponding Config field alone.
type File struct {
	// APIURL overrides the api.php endpoint.
	APIURL string `yaml:"api_url,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"user_agent,omitempty"`

	// SiteHost overrides the content site host.
	SiteHost string `yaml:"site_host,omitempty"`

	// ArticlePathPrefix overrides the article link prefix.
	ArticlePathPrefix string `yaml:"article_path_prefix,omitempty"`

	// FetchTimeout overrides the fetch timeout ("15s").
	FetchTimeout time.Duration `yaml:"fetch_timeout,omitempty"`

	// TickInterval overrides the timer resolution ("10ms").
	TickInterval time.Duration `yaml:"tick_interval,omitempty"`

	// Cache configures the article cache.
	Cache CacheFile `yaml:"cache,omitempty"`

	// LogFile overrides the log file path of the interactive game.
	LogFile string `yaml:"log_file,omitempty"`

	// Challenges replaces the built-in catalog. An empty list is an error.
	Challenges []challenge.Challenge `yaml:"challenges,omitempty"`
}

// CacheFile is the cache section of the configuration file.
type CacheFile struct {
	// Enabled turns the cache on or off. Nil leaves the default.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Dir is the cache directory.
	Dir string `yaml:"dir,omitempty"`

	// TTL is the maximum age of a cached article ("168h").
	TTL *time.Duration `yaml:"ttl,omitempty"`
}

// LoadConfigFile loads the configuration file at path.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .wikirace in the current directory
// 3. Look for .wikirace in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply copies the values set in the file over c.
func (cf *File) Apply(c *Config) {
	if cf.APIURL != "" {
		c.APIURL = cf.APIURL
	}
	if cf.UserAgent != "" {
		c.UserAgent = cf.UserAgent
	}
	if cf.SiteHost != "" {
		c.SiteHost = cf.SiteHost
	}
	if cf.ArticlePathPrefix != "" {
		c.ArticlePathPrefix = cf.ArticlePathPrefix
	}
	if cf.FetchTimeout != 0 {
		c.FetchTimeout = cf.FetchTimeout
	}
	if cf.TickInterval != 0 {
		c.TickInterval = cf.TickInterval
	}
	if cf.Cache.Enabled != nil {
		c.CacheEnabled = *cf.Cache.Enabled
	}
	if cf.Cache.Dir != "" {
		c.CacheDir = cf.Cache.Dir
	}
	if cf.Cache.TTL != nil {
		c.CacheTTL = *cf.Cache.TTL
	}
	if cf.LogFile != "" {
		c.LogFile = cf.LogFile
	}
	if cf.Challenges != nil {
		c.Challenges = append([]challenge.Challenge{}, cf.Challenges...)
	}
}

// ApplyEnv overrides c with WIKIRACE_* environment variables.
// Variables that are not set leave the current values alone.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// Load builds a Config from defaults, the configuration file and the
// environment. An explicit configPath that does not exist is an error;
// a missing default file is not.
func Load(configPath string) (*Config, error) {
	cfg := NewConfig()
	cfg.ConfigFilePath = configPath

	path := FindConfigFile(configPath)
	if path == "" && configPath != "" {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}
	if path != "" {
		cf, err := LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cf.Apply(cfg)
		cfg.ConfigFilePath = path
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

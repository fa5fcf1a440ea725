package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/wikirace/internal/challenge"
	"github.com/nao1215/wikirace/internal/wiki"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "wikirace"

	// DefaultAPIURL is the MediaWiki Action API of the English Wikipedia.
	DefaultAPIURL = wiki.DefaultEndpoint

	// DefaultSiteHost is the host whose absolute links count as internal.
	DefaultSiteHost = wiki.DefaultSiteHost

	// DefaultArticlePathPrefix is the path prefix of article links.
	DefaultArticlePathPrefix = wiki.DefaultArticlePathPrefix

	// DefaultUserAgent identifies wikirace in API requests. Wikimedia
	// asks clients for a descriptive User-Agent.
	DefaultUserAgent = wiki.DefaultUserAgent

	// DefaultFetchTimeout is long enough for the largest articles on a slow
	// connection, and short enough that a stalled request surfaces as an
	// error the player can retry.
	DefaultFetchTimeout = 15 * time.Second

	// DefaultTickInterval is the timer resolution. 10ms gives the two
	// decimal places shown to the player.
	DefaultTickInterval = 10 * time.Millisecond

	// DefaultCacheTTL is how long a cached article is served before it is
	// fetched again.
	DefaultCacheTTL = 7 * 24 * time.Hour
)

// Config holds all configuration options for wikirace.
// This struct is populated from defaults, the config file, environment
// variables and CLI flags, in that order, and passed through the
// application rather than kept in global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The config file groups cache settings, but they are
// flattened here because every consumer reads only one or two of them.
type Config struct {
	// APIURL is the api.php endpoint of the content site.
	APIURL string `env:"WIKIRACE_API_URL"`

	// UserAgent is the User-Agent header sent with API requests.
	UserAgent string `env:"WIKIRACE_USER_AGENT"`

	// SiteHost is the host of the content site. Absolute links to this host
	// are navigable; links to other hosts are external.
	SiteHost string `env:"WIKIRACE_SITE_HOST"`

	// ArticlePathPrefix is the path prefix of article links ("/wiki/").
	ArticlePathPrefix string `env:"WIKIRACE_ARTICLE_PATH_PREFIX"`

	// FetchTimeout bounds a single article fetch.
	FetchTimeout time.Duration `env:"WIKIRACE_FETCH_TIMEOUT"`

	// TickInterval is how often elapsed time is sampled.
	TickInterval time.Duration `env:"WIKIRACE_TICK_INTERVAL"`

	// CacheEnabled turns on the on-disk article cache.
	CacheEnabled bool `env:"WIKIRACE_CACHE"`

	// CacheDir is the directory of the article cache database.
	// Defaults to the XDG cache directory (~/.cache/wikirace on Linux).
	CacheDir string `env:"WIKIRACE_CACHE_DIR"`

	// CacheTTL is how long a cached article stays valid. Zero keeps
	// articles forever.
	CacheTTL time.Duration `env:"WIKIRACE_CACHE_TTL"`

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool `env:"WIKIRACE_VERBOSE"`

	// LogFile is where the interactive game writes its log, so the terminal
	// is left to the game. Defaults to the XDG state directory.
	LogFile string `env:"WIKIRACE_LOG_FILE"`

	// ConfigFilePath is the path to the configuration file.
	// If empty, .wikirace is searched for in the current directory and then
	// in the user's home directory.
	ConfigFilePath string

	// Challenges replaces the built-in challenge catalog when non-nil.
	// An explicitly empty list is invalid.
	Challenges []challenge.Challenge

	// JSONReport prints the result of a won game as JSON.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport prints the result of a won game as Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts, URLs).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		APIURL:            DefaultAPIURL,
		UserAgent:         DefaultUserAgent,
		SiteHost:          DefaultSiteHost,
		ArticlePathPrefix: DefaultArticlePathPrefix,
		FetchTimeout:      DefaultFetchTimeout,
		TickInterval:      DefaultTickInterval,
		CacheEnabled:      true,
		CacheDir:          XDGCacheDir(),
		CacheTTL:          DefaultCacheTTL,
		LogFile:           filepath.Join(XDGStateDir(), "wikirace.log"),
	}
}

// XDGConfigDir returns the XDG config directory for wikirace.
// On Linux: ~/.config/wikirace
// On macOS: ~/Library/Application Support/wikirace
// On Windows: %APPDATA%\wikirace
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for wikirace.
// On Linux: ~/.cache/wikirace
// On macOS: ~/Library/Caches/wikirace
// On Windows: %LOCALAPPDATA%\cache\wikirace
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// XDGStateDir returns the XDG state directory for wikirace, where logs go.
// On Linux: ~/.local/state/wikirace
func XDGStateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// We return the first error found because fixing one error often makes
// others irrelevant.
func (c *Config) Validate() error {
	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.TickInterval <= 0 {
		return ErrInvalidTickInterval
	}

	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidAPIURL, c.APIURL)
	}

	if c.CacheTTL < 0 {
		return ErrInvalidCacheTTL
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Challenges != nil {
		if _, err := challenge.New(c.Challenges); err != nil {
			if len(c.Challenges) == 0 {
				return ErrEmptyCatalog
			}
			return fmt.Errorf("invalid challenges in config: %w", err)
		}
	}

	return nil
}

// Catalog returns the challenge catalog to play: the configured list if
// one was given, the built-in catalog otherwise.
func (c *Config) Catalog() (*challenge.Catalog, error) {
	if c.Challenges == nil {
		return challenge.Builtin(), nil
	}
	if len(c.Challenges) == 0 {
		return nil, ErrEmptyCatalog
	}
	return challenge.New(c.Challenges)
}

// Classifier returns the link classifier for the configured site.
func (c *Config) Classifier() *wiki.Classifier {
	return wiki.NewClassifier(c.SiteHost, c.ArticlePathPrefix)
}

package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	// A zero timeout would fail every fetch immediately.
	ErrInvalidTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidTickInterval is returned when the timer interval is not positive.
	ErrInvalidTickInterval = errors.New("invalid tick interval: must be positive")

	// ErrInvalidAPIURL is returned when the API URL is not an absolute
	// http or https URL.
	ErrInvalidAPIURL = errors.New("invalid API URL: must be an absolute http(s) URL")

	// ErrInvalidCacheTTL is returned when the cache TTL is negative.
	// Use 0 to keep cached articles forever.
	ErrInvalidCacheTTL = errors.New("invalid cache TTL: must be non-negative")

	// ErrEmptyCatalog is returned when the config file replaces the
	// challenge catalog with an empty list.
	ErrEmptyCatalog = errors.New("challenge list in config is empty")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)

package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoChecksFile is returned when --checks is set to an empty string.
	ErrNoChecksFile = errors.New("no checks file specified")

	// ErrInvalidTimeout is returned when the timeout is negative.
	ErrInvalidTimeout = errors.New("invalid timeout: must be zero or positive")

	// ErrInvalidMaxBodySize is returned when the body limit is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be zero or positive")

	// ErrConflictingReportFormats is returned when both --markdown and --text
	// are given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --markdown and --text cannot be used together")

	// ErrCompactRequiresJSON is returned when --compact is combined with a
	// non-JSON report.
	ErrCompactRequiresJSON = errors.New("--compact only applies to the JSON report")

	// ErrMissingOnlyRequiresText is returned when --missing-only is given
	// without --text.
	ErrMissingOnlyRequiresText = errors.New("--missing-only requires --text")

	// ErrConflictingTorOptions is returned when both --tor and --tor-proxy are
	// given.
	ErrConflictingTorOptions = errors.New("conflicting Tor options: --tor and --tor-proxy cannot be used together")

	// ErrInvalidTorStartupTimeout is returned when the embedded Tor startup
	// timeout is not positive.
	ErrInvalidTorStartupTimeout = errors.New("invalid Tor startup timeout: must be positive")
)

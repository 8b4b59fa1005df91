package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "htmlgrader"

	// DefaultChecksFile is read when --checks is not given.
	DefaultChecksFile = "checks.json"

	// DefaultTimeout of zero leaves the HTTP transport defaults in place.
	DefaultTimeout time.Duration = 0

	// DefaultUserAgent identifies htmlgrader in HTTP requests.
	DefaultUserAgent = "htmlgrader/1.0 (+https://github.com/nao1215/htmlgrader)"

	// DefaultMaxBodySize of zero buffers the whole response body.
	DefaultMaxBodySize = 0

	// DefaultTorStartupTimeout bounds embedded Tor bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Mode selects where the document comes from.
type Mode int

const (
	// ModeNone means neither --file nor --url was given; the run is a no-op.
	ModeNone Mode = iota

	// ModeFile reads the document from HTMLFile.
	ModeFile

	// ModeURL fetches the document from URL.
	ModeURL
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeFile:
		return "file"
	case ModeURL:
		return "url"
	default:
		return "none"
	}
}

// Config holds all options of a single check run. It is built from CLI flags
// and passed down explicitly; nothing reads it from global state.
type Config struct {
	// ChecksFile is the JSON array of selectors.
	ChecksFile string

	// HTMLFile selects file mode. Takes precedence over URL.
	HTMLFile string

	// URL selects URL mode when HTMLFile is empty.
	URL string

	// Timeout is the HTTP client timeout. Zero means no client timeout.
	Timeout time.Duration

	// UserAgent is sent with the URL mode request.
	UserAgent string

	// MaxBodySize bounds the buffered response body in bytes. Zero means
	// no limit.
	MaxBodySize int64

	// Encoding forces the document character encoding (e.g. "shift_jis").
	// Empty means detect from Content-Type and meta tags.
	Encoding string

	// SettingsFile is the path of the YAML settings file, if any.
	SettingsFile string

	// Settings holds the loaded settings file. Never nil after buildConfig.
	Settings *Settings

	// TorProxyAddress routes URL mode through an external SOCKS5 proxy.
	TorProxyAddress string

	// EmbeddedTor starts a tornago-managed Tor daemon for URL mode.
	EmbeddedTor bool

	// TorStartupTimeout bounds embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// MarkdownReport and TextReport select alternative report formats.
	// JSON is used when both are false.
	MarkdownReport bool
	TextReport     bool

	// CompactJSON writes the JSON report without indentation.
	CompactJSON bool

	// MissingOnly lists only unmatched selectors in the text report.
	MissingOnly bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// SaveHistory records the run in the history database.
	SaveHistory bool

	// DBDir is the directory of the history database.
	DBDir string

	// Verbose enables debug logging.
	Verbose bool
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		ChecksFile:        DefaultChecksFile,
		Timeout:           DefaultTimeout,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		TorStartupTimeout: DefaultTorStartupTimeout,
		Settings:          NewSettings(),
		DBDir:             XDGDataDir(),
	}
}

// Mode returns the document source mode. File wins when both are set.
func (c *Config) Mode() Mode {
	switch {
	case c.HTMLFile != "":
		return ModeFile
	case c.URL != "":
		return ModeURL
	default:
		return ModeNone
	}
}

// UseTor reports whether URL mode should go through Tor.
func (c *Config) UseTor() bool {
	return c.EmbeddedTor || c.TorProxyAddress != ""
}

// XDGDataDir returns the XDG data directory for htmlgrader.
// On Linux: ~/.local/share/htmlgrader
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for htmlgrader.
// On Linux: ~/.config/htmlgrader
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks option combinations. File existence is checked separately
// by checks.AssertFileExists so that it produces the missing-file diagnostic.
func (c *Config) Validate() error {
	if c.ChecksFile == "" {
		return ErrNoChecksFile
	}
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.MarkdownReport && c.TextReport {
		return ErrConflictingReportFormats
	}
	if c.CompactJSON && (c.MarkdownReport || c.TextReport) {
		return ErrCompactRequiresJSON
	}
	if c.MissingOnly && !c.TextReport {
		return ErrMissingOnlyRequiresText
	}
	if c.EmbeddedTor && c.TorProxyAddress != "" {
		return ErrConflictingTorOptions
	}
	if c.EmbeddedTor && c.TorStartupTimeout <= 0 {
		return ErrInvalidTorStartupTimeout
	}
	return nil
}

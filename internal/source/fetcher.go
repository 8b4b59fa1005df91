package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/htmlgrader/internal/config"
	"github.com/nao1215/htmlgrader/internal/log"
	"github.com/nao1215/htmlgrader/internal/model"
	"github.com/nao1215/htmlgrader/internal/tor"
)

// Fetcher downloads HTML documents.
type Fetcher struct {
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	settings    *config.Settings
	transport   http.RoundTripper
	viaTor      bool
	logger      *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTimeout bounds the whole request. Zero means no timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the default User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the largest accepted response body in bytes. Zero
// accepts any size.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithSettings sets the per-host headers and cookies.
func WithSettings(s *config.Settings) FetcherOption {
	return func(f *Fetcher) {
		if s != nil {
			f.settings = s
		}
	}
}

// WithTransport replaces the base transport.
func WithTransport(rt http.RoundTripper) FetcherOption {
	return func(f *Fetcher) {
		f.transport = rt
	}
}

// WithTor routes requests through a Tor client and allows .onion hosts.
func WithTor(c *tor.Client) FetcherOption {
	return func(f *Fetcher) {
		f.transport = c.Transport()
		f.viaTor = true
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a Fetcher with the defaults from the config package.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		timeout:     config.DefaultTimeout,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
		settings:    config.NewSettings(),
		transport:   http.DefaultTransport,
		logger:      log.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) client() *http.Client {
	return &http.Client{
		Timeout: f.timeout,
		Transport: &headerInjectingTransport{
			base:     f.transport,
			settings: f.settings,
		},
	}
}

// Fetch performs one GET of rawURL and buffers the body.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &FetchError{URL: rawURL, Err: ErrUnsupportedScheme}
	}
	if tor.IsOnionHost(u.Hostname()) {
		if err := tor.ValidateHost(u.Hostname()); err != nil {
			return nil, &FetchError{URL: rawURL, Err: err}
		}
		if !f.viaTor {
			return nil, &FetchError{URL: rawURL, Err: ErrOnionRequiresTor}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	f.logger.Debug("fetching document", "url", rawURL, "tor", f.viaTor)

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	f.logger.Debug("response received", "url", rawURL, "status", resp.Status,
		"content_type", resp.Header.Get("Content-Type"))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: ErrUnexpectedStatus}
	}

	var r io.Reader = resp.Body
	if f.maxBodySize > 0 {
		r = io.LimitReader(resp.Body, f.maxBodySize+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}
	if f.maxBodySize > 0 && int64(len(body)) > f.maxBodySize {
		return nil, &FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, f.maxBodySize),
		}
	}

	doc := newDocument(model.SourceURL, rawURL, body)
	doc.StatusCode = resp.StatusCode
	doc.ContentType = resp.Header.Get("Content-Type")
	return doc, nil
}

// IsFetchError reports whether err came from Fetch.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

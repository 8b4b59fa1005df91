package source

import (
	"errors"
	"fmt"
)

var (
	// ErrOnionRequiresTor is returned when a .onion URL is fetched without Tor.
	ErrOnionRequiresTor = errors.New(".onion hosts can only be fetched through Tor (use --tor or --tor-proxy)")

	// ErrUnsupportedScheme is returned for URLs that are not http or https.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme: expected http or https")

	// ErrBodyTooLarge is returned when the response exceeds the max body size.
	ErrBodyTooLarge = errors.New("response body exceeds maximum size")

	// ErrUnknownEncoding is returned for an unrecognized --encoding label.
	ErrUnknownEncoding = errors.New("unknown character encoding")

	// ErrUnexpectedStatus is wrapped by FetchError for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)

// FetchError describes a failed URL fetch.
type FetchError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %v (%d)", e.URL, e.Err, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

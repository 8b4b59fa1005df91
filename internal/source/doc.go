// Package source loads the HTML document to grade, either from a local
// file or with a single HTTP GET.
//
// The whole document is buffered before parsing. URL fetches are never
// retried; a transport error or a non-2xx status is returned as a
// *FetchError. Request headers and cookies configured per host in the
// settings file are added by a RoundTripper, so redirects to another host
// pick up that host's settings rather than the original one's.
//
// Hosts under .onion are refused unless the Fetcher was built with a Tor
// client.
package source

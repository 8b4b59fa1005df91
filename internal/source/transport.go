package source

import (
	"net/http"

	"github.com/nao1215/htmlgrader/internal/config"
)

// headerInjectingTransport adds the settings of the request's host to every
// request, including those issued for redirects.
type headerInjectingTransport struct {
	base     http.RoundTripper
	settings *config.Settings
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	hs := t.settings.ForHost(req.URL.Hostname())
	if hs.Cookie == "" && hs.UserAgent == "" && len(hs.Headers) == 0 {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())

	if hs.Cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+hs.Cookie)
		} else {
			clone.Header.Set("Cookie", hs.Cookie)
		}
	}
	if hs.UserAgent != "" {
		clone.Header.Set("User-Agent", hs.UserAgent)
	}
	for key, value := range hs.Headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}

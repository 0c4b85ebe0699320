package app

import (
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// The retailer's site serves a different page to clients without a
// browser-looking user agent, so every outbound request carries one.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

func NewTransport(lc fx.Lifecycle, log *zap.Logger) http.RoundTripper {
	return &transport{base: http.DefaultTransport}
}

type transport struct {
	base http.RoundTripper
}

func (tpt *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return tpt.base.RoundTrip(req)
}

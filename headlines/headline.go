// Package headlines fetches the daily headline list from an external
// provider and renders it as an HTML fragment.
package headlines

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pevans/pagewire/config"
)

// ErrUpstream wraps every failure to obtain headlines from a provider.
var ErrUpstream = errors.New("headline provider failed")

// Headline is one renderable record.
type Headline struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Source fetches the current headlines in the provider's order. A source
// makes a single outbound call per FetchHeadlines and never returns partial
// results alongside an error.
type Source interface {
	FetchHeadlines(ctx context.Context) ([]Headline, error)
	Name() string
}

// NewHTTPClient returns a client with a tuned transport and an overall
// request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// NewSourceFromConfig builds the configured provider.
func NewSourceFromConfig(nc config.NewsConfig) (Source, error) {
	client := NewHTTPClient(nc.Timeout)

	switch nc.Provider {
	case config.ProviderNewsAPI:
		return NewNewsAPI(nc.BaseURL, nc.APIKey, nc.Country, nc.UserAgent, client), nil
	case config.ProviderFeed:
		return NewFeed(nc.URL, nc.UserAgent, client), nil
	case config.ProviderPage:
		return NewPage(nc.URL, nc.Selector, nc.UserAgent, client), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, nc.Provider)
	}
}

func upstreamError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUpstream, fmt.Sprintf(format, args...))
}

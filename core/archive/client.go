// Package archive talks to the upstream browse service that searches the
// live-music archive and returns raw recording records.
package archive

import (
	"net/http"
	"strings"
	"time"

	"ConcertHub/config"
	"ConcertHub/logger"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// DefaultTimeout is the budget for one upstream call.
const DefaultTimeout = 30 * time.Second

// Options configures a Client. Zero values fall back to defaults; a zero
// Rate disables client-side rate limiting.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	Rate              float64
	Burst             int
	BreakerFailures   uint32
	BreakerOpenPeriod time.Duration
	HTTPClient        *http.Client
}

// OptionsFromConfig maps service configuration onto client options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:           cfg.BrowseServiceURL,
		Timeout:           cfg.UpstreamTimeout,
		Rate:              cfg.UpstreamRate,
		Burst:             cfg.UpstreamBurst,
		BreakerFailures:   cfg.BreakerFailures,
		BreakerOpenPeriod: cfg.BreakerOpenPeriod,
	}
}

// Client is the HTTP client for the browse service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*SearchResult]
}

// NewClient creates a browse service client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if opts.Rate > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}

	failures := opts.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	openPeriod := opts.BreakerOpenPeriod
	if openPeriod <= 0 {
		openPeriod = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    limiter,
		breaker: gobreaker.NewCircuitBreaker[*SearchResult](gobreaker.Settings{
			Name:    "browse-service",
			Timeout: openPeriod,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			IsSuccessful: countsAsSuccess,
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("upstream circuit breaker state changed",
					logger.String("breaker", name),
					logger.String("from", from.String()),
					logger.String("to", to.String()))
			},
		}),
	}
}

// BaseURL returns the browse service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

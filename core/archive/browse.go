package archive

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ConcertHub/logger"
	"ConcertHub/metrics"
	"ConcertHub/model"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
)

// SearchParams are the filters, sort and paging sent to the browse endpoint.
// Empty strings and zero ints are omitted from the request.
type SearchParams struct {
	Query     string
	DateRange string
	Artist    string
	Venue     string
	Page      int
	PerPage   int
	SortBy    string
	SortOrder string
}

// Values encodes the parameters as a query string, dropping absent ones.
func (p SearchParams) Values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("query", p.Query)
	set("date_range", p.DateRange)
	set("artist", p.Artist)
	set("venue", p.Venue)
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(p.PerPage))
	}
	set("sort_by", p.SortBy)
	set("sort_order", p.SortOrder)
	return v
}

// SearchResult is a parsed browse response.
type SearchResult struct {
	Recordings []model.RawRecording `json:"results"`
	Total      int                  `json:"total"`
	Rejected   []Rejection          `json:"rejected,omitempty"`
}

// Fetcher returns raw recordings for a set of search parameters.
type Fetcher interface {
	Browse(ctx context.Context, params SearchParams) (*SearchResult, error)
}

var _ Fetcher = (*Client)(nil)

type browseEnvelope struct {
	Total   int               `json:"total"`
	Results []json.RawMessage `json:"results"`
}

// Browse queries the browse service. Errors wrap ErrUpstreamUnavailable,
// ErrUpstreamRejected or the caller's context error.
func (c *Client) Browse(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: rate limit: %v", ErrUpstreamUnavailable, err)
		}
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (*SearchResult, error) {
		return c.browse(ctx, params)
	})
	metrics.UpstreamDuration.Observe(time.Since(start).Seconds())

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	switch {
	case err == nil:
		metrics.UpstreamRequests.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrUpstreamRejected):
		metrics.UpstreamRequests.WithLabelValues("rejected").Inc()
	case errors.Is(err, ErrUpstreamUnavailable):
		metrics.UpstreamRequests.WithLabelValues("unavailable").Inc()
	}
	return result, err
}

func (c *Client) browse(ctx context.Context, params SearchParams) (*SearchResult, error) {
	reqURL := c.baseURL + "/browse"
	if q := params.Values().Encode(); q != "" {
		reqURL += "?" + q
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create browse request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug("querying browse service", logger.String("url", reqURL))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("browse service returned error status",
			logger.Int("status", resp.StatusCode),
			logger.String("url", reqURL))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var env browseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return nil, classifyTransportError(ctx, err)
		}
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUpstreamRejected, err)
	}

	recordings, rejected := ParseRecordings(env.Results)
	if len(rejected) > 0 {
		metrics.RecordingsRejected.Add(float64(len(rejected)))
		for _, r := range rejected {
			logger.Warn("rejected upstream recording",
				logger.Int("index", r.Index),
				logger.String("identifier", r.Identifier),
				logger.String("reason", r.Reason))
		}
	}

	logger.Info("fetched recordings from browse service",
		logger.Int("recordings", len(recordings)),
		logger.Int("rejected", len(rejected)),
		logger.Int("total", env.Total))
	return &SearchResult{Recordings: recordings, Total: env.Total, Rejected: rejected}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// classifyTransportError keeps caller cancellation distinct from upstream
// failure so a cancelled request is not reported as an outage.
func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	if isTimeout(err) {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}

// countsAsSuccess tells the breaker which errors are not the upstream's fault.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode < http.StatusInternalServerError
	}
	return false
}

// Package aggregation serves concert listings and concert details built from
// upstream recordings, caching each grouping run by query fingerprint.
package aggregation

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"ConcertHub/cache"
	"ConcertHub/config"
	"ConcertHub/core/archive"
	"ConcertHub/core/concert"
	"ConcertHub/logger"
	"ConcertHub/metrics"
	"ConcertHub/model"
)

const (
	DefaultFetchMultiplier = 3
	DefaultDetailPerPage   = 100
)

// Options tunes how many raw recordings are requested per call.
type Options struct {
	// FetchMultiplier inflates the listing page size sent upstream, since
	// several recordings collapse into one concert.
	FetchMultiplier int
	// DetailPerPage is the page size of the artist-only detail fetch.
	DetailPerPage int
}

// OptionsFromConfig maps service configuration onto engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		FetchMultiplier: cfg.FetchMultiplier,
		DetailPerPage:   cfg.DetailFetchPerPage,
	}
}

// Stats are the counters reported by the stats endpoint.
type Stats struct {
	CacheSize            int   `json:"cache_size"`
	ValidEntries         int   `json:"valid_entries"`
	CacheDurationSeconds int   `json:"cache_duration_seconds"`
	DroppedGroups        int64 `json:"dropped_groups"`
	DroppedRecordings    int64 `json:"dropped_recordings"`
	RejectedRecordings   int64 `json:"rejected_recordings"`
}

// Engine answers listing and detail requests.
type Engine struct {
	fetcher archive.Fetcher
	cache   *cache.ResultCache
	clock   cache.Clock
	opts    Options

	droppedGroups      atomic.Int64
	droppedRecordings  atomic.Int64
	rejectedRecordings atomic.Int64
}

// New creates an engine. A nil clock means cache.SystemClock.
func New(fetcher archive.Fetcher, resultCache *cache.ResultCache, clock cache.Clock, opts Options) *Engine {
	if clock == nil {
		clock = cache.SystemClock{}
	}
	if opts.FetchMultiplier <= 0 {
		opts.FetchMultiplier = DefaultFetchMultiplier
	}
	if opts.DetailPerPage <= 0 {
		opts.DetailPerPage = DefaultDetailPerPage
	}
	return &Engine{
		fetcher: fetcher,
		cache:   resultCache,
		clock:   clock,
		opts:    opts,
	}
}

func validate(req model.BrowseRequest) error {
	if req.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidRequest, req.Page)
	}
	if req.PerPage < 1 || req.PerPage > model.MaxPerPage {
		return fmt.Errorf("%w: per_page must be between 1 and %d, got %d", ErrInvalidRequest, model.MaxPerPage, req.PerPage)
	}
	return nil
}

// upstreamParams builds the browse call for a listing request. The page size
// is inflated by the fetch multiplier; the page number is passed unchanged.
func (e *Engine) upstreamParams(req model.BrowseRequest) archive.SearchParams {
	return archive.SearchParams{
		Query:     req.Query,
		DateRange: req.DateRange,
		Artist:    req.Artist,
		Venue:     req.Venue,
		Page:      req.Page,
		PerPage:   req.PerPage * e.opts.FetchMultiplier,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
}

// Browse returns one page of concerts for req. Zero paging and sort fields
// take their defaults.
func (e *Engine) Browse(ctx context.Context, req model.BrowseRequest) (*model.ConcertPage, error) {
	req = req.WithDefaults()
	if err := validate(req); err != nil {
		return nil, err
	}

	params := e.upstreamParams(req)
	fingerprint := cache.Fingerprint(params.Values())

	var groups []model.ConcertGroup
	if entry, ok := e.cache.Lookup(fingerprint); ok {
		logger.Debug("using cached concert listing", logger.String("fingerprint", fingerprint))
		groups = entry.Groups
	} else {
		result, res, err := e.fetchAndGroup(ctx, params)
		if err != nil {
			return nil, err
		}
		// A cancelled request must not write to the shared cache.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.cache.Store(fingerprint, res.Groups, result.Recordings)
		e.cache.Sweep()
		groups = res.Groups
	}

	if req.FilterByConcertDate && req.DateRange != "" {
		start, end := DateWindow(req.DateRange, e.clock.Now())
		groups = filterByConcertDate(groups, start, end)
		logger.Debug("filtered concerts by concert date",
			logger.String("date_range", req.DateRange),
			logger.Int("remaining", len(groups)))
	}

	sorted := sortGroups(groups, req.SortBy, req.SortOrder)
	return paginate(sorted, req.Page, req.PerPage), nil
}

// Concert returns the concert with the given identity key. Valid cache
// entries are searched first; otherwise the artist's recordings are fetched
// and regrouped.
func (e *Engine) Concert(ctx context.Context, key string) (*model.ConcertGroup, error) {
	if g, ok := e.cache.FindConcert(key); ok {
		metrics.DetailLookups.WithLabelValues("cache").Inc()
		logger.Debug("concert found in cache", logger.String("concert_key", key))
		return &g, nil
	}

	artist, date, ok := model.SplitIdentityKey(key)
	if !ok {
		metrics.DetailLookups.WithLabelValues("malformed").Inc()
		return nil, fmt.Errorf("%w: %q", ErrMalformedIdentity, key)
	}
	if _, err := time.Parse(model.ConcertDateLayout, date); err != nil {
		metrics.DetailLookups.WithLabelValues("malformed").Inc()
		return nil, fmt.Errorf("%w: invalid date format %q", ErrMalformedIdentity, date)
	}

	logger.Info("concert not in cache, searching upstream",
		logger.String("artist", artist),
		logger.String("date", date))

	_, res, err := e.fetchAndGroup(ctx, archive.SearchParams{
		Artist:  artist,
		PerPage: e.opts.DetailPerPage,
	})
	if err != nil {
		return nil, err
	}

	var match *model.ConcertGroup
	for i := range res.Groups {
		g := &res.Groups[i]
		if g.Identity().Date != date {
			continue
		}
		if g.ConcertKey == key {
			match = g
			break
		}
		if match == nil {
			match = g
		}
	}
	if match == nil {
		metrics.DetailLookups.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	metrics.DetailLookups.WithLabelValues("fetch").Inc()
	return match, nil
}

func (e *Engine) fetchAndGroup(ctx context.Context, params archive.SearchParams) (*archive.SearchResult, concert.Result, error) {
	result, err := e.fetcher.Browse(ctx, params)
	if err != nil {
		logger.Error("failed to fetch recordings",
			logger.Any("params", params.Values()),
			logger.ErrorField(err))
		return nil, concert.Result{}, err
	}
	e.rejectedRecordings.Add(int64(len(result.Rejected)))

	res, err := e.group(result.Recordings)
	if err != nil {
		return nil, concert.Result{}, err
	}

	if res.DroppedGroups > 0 {
		e.droppedGroups.Add(int64(res.DroppedGroups))
		e.droppedRecordings.Add(int64(res.DroppedRecordings))
		metrics.GroupsDropped.Add(float64(res.DroppedGroups))
	}
	logger.Info("grouped recordings into concerts",
		logger.Int("recordings", len(result.Recordings)),
		logger.Int("concerts", len(res.Groups)),
		logger.Int("dropped_groups", res.DroppedGroups),
		logger.Int("dropped_recordings", res.DroppedRecordings),
		logger.Int("rejected", len(result.Rejected)))
	return result, res, nil
}

func (e *Engine) group(recordings []model.RawRecording) (res concert.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("grouping panicked",
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())))
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()
	return concert.Group(recordings, e.clock.Now()), nil
}

// ClearCache drops every listing entry and returns how many were removed.
func (e *Engine) ClearCache() int {
	n := e.cache.Clear()
	logger.Info("cleared concert cache", logger.Int("removed", n))
	return n
}

// CacheInfo describes the listing cache.
func (e *Engine) CacheInfo() model.CacheInfo {
	return e.cache.Info()
}

// Stats reports cache size and grouping counters since startup.
func (e *Engine) Stats() Stats {
	info := e.cache.Info()
	return Stats{
		CacheSize:            info.TotalEntries,
		ValidEntries:         info.ValidEntries,
		CacheDurationSeconds: info.TTLSeconds,
		DroppedGroups:        e.droppedGroups.Load(),
		DroppedRecordings:    e.droppedRecordings.Load(),
		RejectedRecordings:   e.rejectedRecordings.Load(),
	}
}

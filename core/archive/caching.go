package archive

import (
	"context"
	"time"

	"ConcertHub/cache"
	"ConcertHub/logger"
	"ConcertHub/metrics"

	"github.com/goccy/go-json"
)

// DefaultSearchCacheTTL is how long a browse response stays in the
// metadata cache.
const DefaultSearchCacheTTL = 30 * time.Minute

// CachingFetcher consults a MetadataStore before calling the wrapped
// fetcher. Store failures only cost the cache; the fetch still happens.
type CachingFetcher struct {
	next  Fetcher
	store cache.MetadataStore
	ttl   time.Duration
}

var _ Fetcher = (*CachingFetcher)(nil)

// NewCachingFetcher wraps next with store.
func NewCachingFetcher(next Fetcher, store cache.MetadataStore, ttl time.Duration) *CachingFetcher {
	if ttl <= 0 {
		ttl = DefaultSearchCacheTTL
	}
	return &CachingFetcher{next: next, store: store, ttl: ttl}
}

func searchKey(params SearchParams) string {
	return cache.HashKey("browse", cache.Fingerprint(params.Values()))
}

func (f *CachingFetcher) Browse(ctx context.Context, params SearchParams) (*SearchResult, error) {
	key := searchKey(params)

	data, ok, err := f.store.Get(ctx, cache.MetadataSearch, key)
	switch {
	case err != nil:
		metrics.MetadataCacheRequests.WithLabelValues("error").Inc()
		logger.Warn("metadata cache read failed, fetching upstream",
			logger.String("key", key), logger.ErrorField(err))
	case ok:
		var cached SearchResult
		if err := json.Unmarshal(data, &cached); err == nil {
			metrics.MetadataCacheRequests.WithLabelValues("hit").Inc()
			logger.Debug("metadata cache hit", logger.String("key", key))
			return &cached, nil
		}
		metrics.MetadataCacheRequests.WithLabelValues("error").Inc()
		logger.Warn("discarding undecodable metadata cache entry", logger.String("key", key))
	default:
		metrics.MetadataCacheRequests.WithLabelValues("miss").Inc()
	}

	result, err := f.next.Browse(ctx, params)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return result, nil
	}

	// Rejections were already counted on this fetch; replays carry none.
	stored := *result
	stored.Rejected = nil
	encoded, err := json.Marshal(&stored)
	if err != nil {
		logger.Warn("failed to encode browse result for cache", logger.ErrorField(err))
		return result, nil
	}
	if err := f.store.Set(ctx, cache.MetadataSearch, key, encoded, f.ttl); err != nil {
		logger.Warn("metadata cache write failed", logger.String("key", key), logger.ErrorField(err))
	}
	return result, nil
}

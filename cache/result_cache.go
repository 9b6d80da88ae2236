package cache

import (
	"sort"
	"sync"
	"time"

	"ConcertHub/logger"
	"ConcertHub/metrics"
	"ConcertHub/model"
)

// DefaultListingTTL is how long a concert listing stays valid.
const DefaultListingTTL = 300 * time.Second

// Clock reports the current time. It is injected so expiry can be tested
// without sleeping.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Entry is one cached grouping run. Entries are immutable once stored; a
// re-store under the same fingerprint replaces the whole entry.
type Entry struct {
	Fingerprint string
	Groups      []model.ConcertGroup
	// Recordings are the raw recordings the groups were built from, kept so
	// a detail lookup can be answered without re-fetching.
	Recordings []model.RawRecording
	CreatedAt  time.Time

	seq uint64
}

// ResultCache maps a query fingerprint to a cached grouping result.
//
// Two concurrent misses on the same fingerprint both fetch and both store;
// the last writer wins. Requests are not de-duplicated in flight. The mutex
// only protects the map itself.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	seq     uint64
	ttl     time.Duration
	clock   Clock
}

// NewResultCache creates an empty cache. A nil clock means SystemClock and a
// non-positive ttl means DefaultListingTTL.
func NewResultCache(ttl time.Duration, clock Clock) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultListingTTL
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ResultCache{
		entries: make(map[string]*Entry),
		ttl:     ttl,
		clock:   clock,
	}
}

// TTL returns the entry lifetime.
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

func (c *ResultCache) valid(e *Entry, now time.Time) bool {
	return now.Sub(e.CreatedAt) < c.ttl
}

// Lookup returns the entry for fingerprint if it exists and has not expired.
// Expired entries are left for Sweep.
func (c *ResultCache) Lookup(fingerprint string) (*Entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[fingerprint]
	c.mu.RUnlock()

	if !ok || !c.valid(e, c.clock.Now()) {
		metrics.ConcertCacheMisses.Inc()
		return nil, false
	}
	metrics.ConcertCacheHits.Inc()
	return e, true
}

// Store replaces the entry for fingerprint.
func (c *ResultCache) Store(fingerprint string, groups []model.ConcertGroup, recordings []model.RawRecording) *Entry {
	e := &Entry{
		Fingerprint: fingerprint,
		Groups:      groups,
		Recordings:  recordings,
		CreatedAt:   c.clock.Now(),
	}

	c.mu.Lock()
	c.seq++
	e.seq = c.seq
	c.entries[fingerprint] = e
	size := len(c.entries)
	c.mu.Unlock()

	metrics.ConcertCacheEntries.Set(float64(size))
	logger.Debug("concert listing cached",
		logger.String("fingerprint", fingerprint),
		logger.Int("groups", len(groups)),
		logger.Int("recordings", len(recordings)))
	return e
}

// Sweep removes every entry whose age has reached the TTL and returns how
// many were removed.
func (c *ResultCache) Sweep() int {
	now := c.clock.Now()

	c.mu.Lock()
	removed := 0
	for k, e := range c.entries {
		if !c.valid(e, now) {
			delete(c.entries, k)
			removed++
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	metrics.ConcertCacheEntries.Set(float64(size))
	if removed > 0 {
		metrics.ConcertCacheEvictions.WithLabelValues("expired").Add(float64(removed))
		logger.Info("cleaned up expired concert cache entries", logger.Int("removed", removed))
	}
	return removed
}

// Clear removes all entries and returns how many there were.
func (c *ResultCache) Clear() int {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]*Entry)
	c.mu.Unlock()

	metrics.ConcertCacheEntries.Set(0)
	metrics.ConcertCacheEvictions.WithLabelValues("cleared").Add(float64(n))
	return n
}

// ValidEntries snapshots the unexpired entries in insertion order.
func (c *ResultCache) ValidEntries() []*Entry {
	now := c.clock.Now()

	c.mu.RLock()
	out := make([]*Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if c.valid(e, now) {
			out = append(out, e)
		}
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// FindConcert scans the valid entries, oldest first, for a group with the
// given identity key.
func (c *ResultCache) FindConcert(key string) (model.ConcertGroup, bool) {
	for _, e := range c.ValidEntries() {
		for _, g := range e.Groups {
			if g.ConcertKey == key {
				return g, true
			}
		}
	}
	return model.ConcertGroup{}, false
}

// Info reports entry counts. Expired entries still present are counted
// until the next sweep.
func (c *ResultCache) Info() model.CacheInfo {
	now := c.clock.Now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	info := model.CacheInfo{
		TotalEntries: len(c.entries),
		TTLSeconds:   int(c.ttl / time.Second),
	}
	for _, e := range c.entries {
		if c.valid(e, now) {
			info.ValidEntries++
		}
	}
	info.ExpiredEntries = info.TotalEntries - info.ValidEntries
	return info
}

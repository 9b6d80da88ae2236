package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"ConcertHub/cache"
	"ConcertHub/core/aggregation"
	"ConcertHub/core/archive"
	"ConcertHub/model"

	"github.com/goccy/go-json"
)

type stubFetcher struct {
	mu         sync.Mutex
	calls      int
	recordings []model.RawRecording
	err        error
}

func (f *stubFetcher) Browse(ctx context.Context, params archive.SearchParams) (*archive.SearchResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &archive.SearchResult{Recordings: f.recordings, Total: len(f.recordings)}, nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func recording(id, artist, date, venue string) model.RawRecording {
	d, err := time.Parse(model.ConcertDateLayout, date)
	if err != nil {
		panic(err)
	}
	return model.RawRecording{Identifier: id, Title: id, Artist: artist, Date: &d, Venue: venue, TotalTracks: 10}
}

func newTestServer(f *stubFetcher, metadata cache.MetadataStore) *httptest.Server {
	engine := aggregation.New(f, cache.NewResultCache(0, nil), nil, aggregation.Options{})
	return httptest.NewServer(NewRouter(engine, metadata))
}

func doRequest(t *testing.T, method, target string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func decodeDetail(t *testing.T, body []byte) string {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("error body %q: %v", body, err)
	}
	return e.Detail
}

func TestBrowseConcertsEndpoint(t *testing.T) {
	f := &stubFetcher{recordings: []model.RawRecording{
		recording("a1", "Phish", "1995-08-16", "Deer Creek"),
		recording("a2", "Phish", "1995-08-16", "Deer Creek"),
		recording("b1", "Grateful Dead", "1977-05-08", "Barton Hall"),
	}}
	srv := newTestServer(f, nil)
	defer srv.Close()

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/concerts?sort_by=artist&sort_order=asc&per_page=5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request ID header")
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}

	var page model.ConcertPage
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 || page.PerPage != 5 || page.TotalPages != 1 {
		t.Errorf("unexpected page: %+v", page)
	}
	if page.Results[0].Artist != "Grateful Dead" || page.Results[1].TotalRecordings != 2 {
		t.Errorf("unexpected results: %+v", page.Results)
	}
}

func TestBrowseConcertsValidation(t *testing.T) {
	f := &stubFetcher{}
	srv := newTestServer(f, nil)
	defer srv.Close()

	for _, q := range []string{"page=0", "page=abc", "per_page=0", "per_page=101", "filter_by_concert_date=maybe"} {
		resp, body := doRequest(t, http.MethodGet, srv.URL+"/concerts?"+q)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, resp.StatusCode)
			continue
		}
		if decodeDetail(t, body) == "" {
			t.Errorf("%s: empty detail", q)
		}
	}
	if n := f.callCount(); n != 0 {
		t.Errorf("invalid requests reached upstream %d times", n)
	}
}

func TestBrowseConcertsHugePage(t *testing.T) {
	f := &stubFetcher{recordings: []model.RawRecording{recording("a1", "Phish", "1995-08-16", "")}}
	srv := newTestServer(f, nil)
	defer srv.Close()

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/concerts?page=9223372036854775807&per_page=2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var page model.ConcertPage
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || len(page.Results) != 0 {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestBrowseConcertsUpstreamErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unavailable", fmt.Errorf("%w: refused", archive.ErrUpstreamUnavailable), http.StatusServiceUnavailable},
		{"timeout", fmt.Errorf("%w: slow", archive.ErrUpstreamTimeout), http.StatusGatewayTimeout},
		{"rejected", &archive.StatusError{StatusCode: http.StatusInternalServerError}, http.StatusBadGateway},
		{"unexpected", fmt.Errorf("something else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&stubFetcher{err: tt.err}, nil)
			defer srv.Close()

			resp, body := doRequest(t, http.MethodGet, srv.URL+"/concerts")
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if decodeDetail(t, body) == "" {
				t.Error("empty detail")
			}
		})
	}
}

func TestGetConcertEndpoint(t *testing.T) {
	f := &stubFetcher{recordings: []model.RawRecording{
		recording("a1", "AC/DC", "1979-12-09", "Pavillon de Paris"),
		recording("b1", "Phish", "1995-08-16", "Deer Creek"),
	}}
	srv := newTestServer(f, nil)
	defer srv.Close()

	if resp, _ := doRequest(t, http.MethodGet, srv.URL+"/concerts"); resp.StatusCode != http.StatusOK {
		t.Fatalf("listing status = %d", resp.StatusCode)
	}

	for _, key := range []string{"Phish|1995-08-16", "AC/DC|1979-12-09"} {
		resp, body := doRequest(t, http.MethodGet, srv.URL+"/concerts/"+url.PathEscape(key))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status = %d, body %s", key, resp.StatusCode, body)
		}
		var g model.ConcertGroup
		if err := json.Unmarshal(body, &g); err != nil {
			t.Fatal(err)
		}
		if g.ConcertKey != key || len(g.Recordings) != 1 || g.Recordings[0].ArchiveIdentifier == "" {
			t.Errorf("%s: unexpected concert %+v", key, g)
		}
	}
	if n := f.callCount(); n != 1 {
		t.Errorf("detail lookups should be served from cache, upstream calls = %d", n)
	}
}

func TestGetConcertErrors(t *testing.T) {
	f := &stubFetcher{recordings: []model.RawRecording{recording("a1", "Phish", "1995-08-15", "")}}
	srv := newTestServer(f, nil)
	defer srv.Close()

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/concerts/only-one-part")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed key status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(decodeDetail(t, body), "concert key") {
		t.Errorf("unexpected detail %q", body)
	}
	for _, key := range []string{"Phish|not-a-date", "Phish|unknown"} {
		resp, body := doRequest(t, http.MethodGet, srv.URL+"/concerts/"+url.PathEscape(key))
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", key, resp.StatusCode)
		}
		if !strings.Contains(decodeDetail(t, body), "invalid date format") {
			t.Errorf("%s: unexpected detail %q", key, body)
		}
	}
	if f.callCount() != 0 {
		t.Errorf("malformed key reached upstream")
	}

	resp, _ = doRequest(t, http.MethodGet, srv.URL+"/concerts/"+url.PathEscape("Phish|1995-08-16"))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing concert status = %d, want 404", resp.StatusCode)
	}
}

func TestCacheEndpoints(t *testing.T) {
	f := &stubFetcher{recordings: []model.RawRecording{recording("a1", "Phish", "1995-08-16", "")}}
	srv := newTestServer(f, nil)
	defer srv.Close()

	doRequest(t, http.MethodGet, srv.URL+"/concerts")

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/cache")
	var info model.CacheInfo
	if err := json.Unmarshal(body, &info); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("cache info: %d %s", resp.StatusCode, body)
	}
	if info.TotalEntries != 1 || info.ValidEntries != 1 || info.TTLSeconds != 300 {
		t.Errorf("unexpected cache info %+v", info)
	}

	resp, body = doRequest(t, http.MethodDelete, srv.URL+"/cache")
	var msg MessageResponse
	if err := json.Unmarshal(body, &msg); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("clear: %d %s", resp.StatusCode, body)
	}
	if msg.Message != "Cleared 1 cache entries" {
		t.Errorf("message = %q", msg.Message)
	}

	resp, body = doRequest(t, http.MethodGet, srv.URL+"/stats")
	var stats aggregation.Stats
	if err := json.Unmarshal(body, &stats); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: %d %s", resp.StatusCode, body)
	}
	if stats.CacheSize != 0 || stats.CacheDurationSeconds != 300 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestClearMetadataCache(t *testing.T) {
	store := cache.NewMemoryMetadataStore(nil)
	ctx := context.Background()
	store.Set(ctx, cache.MetadataSearch, "k1", []byte("x"), time.Minute)
	store.Set(ctx, cache.MetadataItem, "k2", []byte("y"), time.Minute)

	srv := newTestServer(&stubFetcher{}, store)
	defer srv.Close()

	resp, body := doRequest(t, http.MethodDelete, srv.URL+"/cache?cache_type=search")
	var msg MessageResponse
	if err := json.Unmarshal(body, &msg); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("clear: %d %s", resp.StatusCode, body)
	}
	if msg.Message != "Cleared 1 search cache entries" {
		t.Errorf("message = %q", msg.Message)
	}
	if _, ok, _ := store.Get(ctx, cache.MetadataItem, "k2"); !ok {
		t.Error("other cache types should survive")
	}

	if resp, _ := doRequest(t, http.MethodDelete, srv.URL+"/cache?cache_type=bogus"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bogus type status = %d, want 400", resp.StatusCode)
	}

	noStore := newTestServer(&stubFetcher{}, nil)
	defer noStore.Close()
	if resp, _ := doRequest(t, http.MethodDelete, noStore.URL+"/cache?cache_type=all"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("disabled metadata cache status = %d, want 400", resp.StatusCode)
	}
}

func TestHealthAndPreflight(t *testing.T) {
	srv := newTestServer(&stubFetcher{}, nil)
	defer srv.Close()

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/health")
	var h HealthResponse
	if err := json.Unmarshal(body, &h); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("health: %d %s", resp.StatusCode, body)
	}
	if h.Status != "healthy" || h.Service != serviceName || h.Version != serviceVersion {
		t.Errorf("unexpected health %+v", h)
	}

	resp, _ = doRequest(t, http.MethodOptions, srv.URL+"/concerts")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Access-Control-Allow-Methods") == "" {
		t.Errorf("preflight status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if got := resp2.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request ID not echoed, got %q", got)
	}
}

package model

// Sort fields and directions accepted by the concert listing.
const (
	SortByDate   = "date"
	SortByArtist = "artist"
	SortByVenue  = "venue"

	SortAsc  = "asc"
	SortDesc = "desc"

	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// BrowseRequest is an inbound concert listing request. Empty strings are
// treated as absent filters.
type BrowseRequest struct {
	Query               string `json:"query,omitempty"`
	DateRange           string `json:"date_range,omitempty"` // 7d, 30d, 90d, 1y
	Artist              string `json:"artist,omitempty"`
	Venue               string `json:"venue,omitempty"`
	Page                int    `json:"page"`
	PerPage             int    `json:"per_page"`
	SortBy              string `json:"sort_by"`
	SortOrder           string `json:"sort_order"`
	FilterByConcertDate bool   `json:"filter_by_concert_date"`
}

// WithDefaults fills the zero-valued paging and sort fields.
func (r BrowseRequest) WithDefaults() BrowseRequest {
	if r.Page == 0 {
		r.Page = DefaultPage
	}
	if r.PerPage == 0 {
		r.PerPage = DefaultPerPage
	}
	if r.SortBy == "" {
		r.SortBy = SortByDate
	}
	if r.SortOrder == "" {
		r.SortOrder = SortDesc
	}
	return r
}

// ConcertPage is one page of the concert listing.
type ConcertPage struct {
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
	Results    []ConcertGroup `json:"results"`
}

// CacheInfo describes the listing cache.
type CacheInfo struct {
	TotalEntries   int `json:"total_entries"`
	ValidEntries   int `json:"valid_entries"`
	ExpiredEntries int `json:"expired_entries"`
	TTLSeconds     int `json:"ttl_seconds"`
}

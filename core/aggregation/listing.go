package aggregation

import (
	"sort"
	"strings"
	"time"

	"ConcertHub/model"
)

const day = 24 * time.Hour

// rangeDays maps date_range tokens to a window length. Unknown tokens get
// the 30 day default.
var rangeDays = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
	"1y":  365,
}

// DateWindow returns [now-range, now] for a date_range token.
func DateWindow(token string, now time.Time) (start, end time.Time) {
	days, ok := rangeDays[token]
	if !ok {
		days = 30
	}
	return now.Add(-time.Duration(days) * day), now
}

// filterByConcertDate keeps the groups whose date falls inside [start, end].
// The input is not modified.
func filterByConcertDate(groups []model.ConcertGroup, start, end time.Time) []model.ConcertGroup {
	out := make([]model.ConcertGroup, 0, len(groups))
	for _, g := range groups {
		if g.Date.Before(start) || g.Date.After(end) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// sortGroups returns a sorted copy of groups. artist and venue compare case
// insensitively with a missing venue treated as ""; any other field sorts
// by date. Equal keys keep their grouping order.
func sortGroups(groups []model.ConcertGroup, sortBy, sortOrder string) []model.ConcertGroup {
	out := make([]model.ConcertGroup, len(groups))
	copy(out, groups)

	desc := sortOrder == model.SortDesc
	var less func(a, b *model.ConcertGroup) bool
	switch sortBy {
	case model.SortByArtist:
		less = func(a, b *model.ConcertGroup) bool {
			return strings.ToLower(a.Artist) < strings.ToLower(b.Artist)
		}
	case model.SortByVenue:
		less = func(a, b *model.ConcertGroup) bool {
			return strings.ToLower(a.VenueName()) < strings.ToLower(b.VenueName())
		}
	default:
		less = func(a, b *model.ConcertGroup) bool {
			return a.Date.Before(b.Date)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(&out[j], &out[i])
		}
		return less(&out[i], &out[j])
	})
	return out
}

// paginate slices one page out of groups and fills the page metadata.
func paginate(groups []model.ConcertGroup, page, perPage int) *model.ConcertPage {
	total := len(groups)
	// (page-1)*perPage overflows for huge pages, so compare before multiplying.
	start := total
	if page-1 <= total/perPage {
		start = min((page-1)*perPage, total)
	}
	end := total
	if total-start > perPage {
		end = start + perPage
	}

	results := make([]model.ConcertGroup, end-start)
	copy(results, groups[start:end])
	return &model.ConcertPage{
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: (total + perPage - 1) / perPage,
		Results:    results,
	}
}

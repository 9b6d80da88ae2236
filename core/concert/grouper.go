// Package concert turns flat lists of recordings into concert groupings.
//
// Recordings are bucketed by identity (artist and day), never by venue: venue
// names are free text parsed from titles and descriptions and disagree between
// tapers of the same show.
package concert

import (
	"strings"
	"time"

	"ConcertHub/model"
)

const (
	defaultSource     = "Multiple sources available"
	titleSeparator    = "-"
	descriptionPrefix = "Live performance by "
)

// Result is the output of one grouping run.
type Result struct {
	Groups []model.ConcertGroup
	// DroppedGroups counts buckets whose key did not parse back into an
	// artist and a YYYY-MM-DD date. Recordings without a date always land
	// in such a bucket.
	DroppedGroups int
	// DroppedRecordings is the number of recordings in those buckets.
	DroppedRecordings int
}

type bucket struct {
	key        string
	recordings []model.RawRecording
}

// Group buckets recordings by concert identity and materializes one group per
// bucket in first-seen order. now stamps IndexedAt/LastUpdated.
func Group(recordings []model.RawRecording, now time.Time) Result {
	var (
		order   []*bucket
		buckets = make(map[string]*bucket)
	)
	for _, r := range recordings {
		key := model.IdentityOf(r).Key()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{key: key}
			buckets[key] = b
			order = append(order, b)
		}
		b.recordings = append(b.recordings, r)
	}

	res := Result{Groups: make([]model.ConcertGroup, 0, len(order))}
	for _, b := range order {
		g, ok := materialize(b, now)
		if !ok {
			res.DroppedGroups++
			res.DroppedRecordings += len(b.recordings)
			continue
		}
		res.Groups = append(res.Groups, g)
	}
	return res
}

func materialize(b *bucket, now time.Time) (model.ConcertGroup, bool) {
	artist, dateStr, ok := model.SplitIdentityKey(b.key)
	if !ok {
		return model.ConcertGroup{}, false
	}
	date, err := time.Parse(model.ConcertDateLayout, dateStr)
	if err != nil {
		return model.ConcertGroup{}, false
	}

	base := b.recordings[0]
	venue := ResolveVenue(b.recordings)

	g := model.ConcertGroup{
		ID:          b.key,
		ConcertKey:  b.key,
		Artist:      artist,
		Date:        date,
		Venue:       venue,
		Location:    optional(base.Location),
		Title:       composeTitle(artist, venue, base.Location),
		Description: base.Description,
		Source:      base.Source,
		Taper:       optional(base.Taper),
		Lineage:     optional(base.Lineage),
		Recordings:  make([]model.ConcertRecording, 0, len(b.recordings)),
		IndexedAt:   now,
		LastUpdated: now,
	}
	if g.Description == "" {
		g.Description = descriptionPrefix + artist
	}
	if g.Source == "" {
		g.Source = defaultSource
	}

	g.TotalRecordings = len(b.recordings)
	for _, r := range b.recordings {
		g.TotalTracks += r.TotalTracks
		g.TotalSize += r.TotalSize
		g.TotalDownloads += r.Downloads
		g.Recordings = append(g.Recordings, model.NewConcertRecording(r))
	}
	return g, true
}

func usableVenue(v string) bool {
	return v != "" && v != model.UnknownVenue
}

// ResolveVenue picks the most frequent usable venue. Ties go to the venue
// seen first, not the alphabetically first one. Returns nil when no
// recording names a usable venue.
func ResolveVenue(recordings []model.RawRecording) *string {
	var (
		seen   []string
		counts = make(map[string]int)
	)
	for _, r := range recordings {
		if !usableVenue(r.Venue) {
			continue
		}
		if counts[r.Venue] == 0 {
			seen = append(seen, r.Venue)
		}
		counts[r.Venue]++
	}

	if len(seen) == 0 {
		return nil
	}
	best, bestCount := seen[0], counts[seen[0]]
	for _, v := range seen[1:] {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return &best
}

func composeTitle(artist string, venue *string, location string) string {
	parts := []string{artist}
	if venue != nil {
		parts = append(parts, *venue)
	}
	if location != "" {
		parts = append(parts, location)
	}
	return strings.Join(parts, titleSeparator)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

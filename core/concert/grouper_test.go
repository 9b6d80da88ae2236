package concert

import (
	"testing"
	"time"

	"ConcertHub/model"
)

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func day(s string) *time.Time {
	t, err := time.Parse(model.ConcertDateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func rec(id, artist, date, venue string) model.RawRecording {
	r := model.RawRecording{Identifier: id, Title: id, Artist: artist, Venue: venue}
	if date != "" {
		r.Date = day(date)
	}
	return r
}

func TestGroupAggregatesOneConcert(t *testing.T) {
	recs := []model.RawRecording{
		{Identifier: "ph1", Title: "a", Artist: "Phish", Date: day("1995-08-16"), TotalTracks: 20, TotalSize: 1000, Downloads: 7},
		{Identifier: "ph2", Title: "b", Artist: "Phish", Date: day("1995-08-16"), TotalTracks: 18, TotalSize: 2500, Downloads: 3},
		{Identifier: "ph3", Title: "c", Artist: "Phish", Date: day("1995-08-16"), TotalTracks: 22, TotalSize: 400, Downloads: 11},
	}

	res := Group(recs, now)
	if len(res.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(res.Groups))
	}
	g := res.Groups[0]
	if g.ConcertKey != "Phish|1995-08-16" || g.ID != g.ConcertKey {
		t.Errorf("unexpected key %q / id %q", g.ConcertKey, g.ID)
	}
	if g.TotalRecordings != 3 {
		t.Errorf("TotalRecordings = %d, want 3", g.TotalRecordings)
	}
	if g.TotalTracks != 60 || g.TotalSize != 3900 || g.TotalDownloads != 21 {
		t.Errorf("totals = %d/%d/%d, want 60/3900/21", g.TotalTracks, g.TotalSize, g.TotalDownloads)
	}
	if len(g.Recordings) != 3 || g.Recordings[1].ArchiveIdentifier != "ph2" || g.Recordings[1].ID != "ph2" {
		t.Errorf("member recordings not preserved in order: %+v", g.Recordings)
	}
	if !g.IndexedAt.Equal(now) {
		t.Errorf("IndexedAt = %v, want %v", g.IndexedAt, now)
	}
}

func TestGroupIgnoresVenueForIdentity(t *testing.T) {
	recs := []model.RawRecording{
		rec("a", "Phish", "1997-12-31", "MSG"),
		rec("b", "Phish", "1997-12-31", "Madison Square Garden"),
	}
	res := Group(recs, now)
	if len(res.Groups) != 1 {
		t.Fatalf("expected venue variants to share a group, got %d groups", len(res.Groups))
	}
}

func TestGroupEmitsInFirstSeenOrder(t *testing.T) {
	recs := []model.RawRecording{
		rec("1", "Zappa", "1974-12-10", ""),
		rec("2", "Allman Brothers", "1971-03-13", ""),
		rec("3", "Zappa", "1974-12-10", ""),
		rec("4", "Grateful Dead", "1977-05-08", ""),
	}
	res := Group(recs, now)
	want := []string{"Zappa|1974-12-10", "Allman Brothers|1971-03-13", "Grateful Dead|1977-05-08"}
	if len(res.Groups) != len(want) {
		t.Fatalf("got %d groups, want %d", len(res.Groups), len(want))
	}
	for i, k := range want {
		if res.Groups[i].ConcertKey != k {
			t.Errorf("group %d = %q, want %q", i, res.Groups[i].ConcertKey, k)
		}
	}
}

func TestGroupDropsUndatedBuckets(t *testing.T) {
	recs := []model.RawRecording{
		rec("dated", "Phish", "1995-08-16", ""),
		rec("undated-1", "Phish", "", ""),
		rec("undated-2", "", "", ""),
		rec("undated-3", "", "", ""),
	}
	res := Group(recs, now)
	if len(res.Groups) != 1 {
		t.Fatalf("expected only the dated group, got %d", len(res.Groups))
	}
	if res.DroppedGroups != 2 {
		t.Errorf("DroppedGroups = %d, want 2", res.DroppedGroups)
	}
	if res.DroppedRecordings != 3 {
		t.Errorf("DroppedRecordings = %d, want 3", res.DroppedRecordings)
	}
}

func TestGroupDropsKeysWithExtraSeparator(t *testing.T) {
	res := Group([]model.RawRecording{rec("x", "Crosby|Nash", "1971-01-01", "")}, now)
	if len(res.Groups) != 0 || res.DroppedGroups != 1 {
		t.Fatalf("expected artist containing '|' to be dropped, got %d groups, %d dropped", len(res.Groups), res.DroppedGroups)
	}
}

func TestGroupEveryRecordingAccountedFor(t *testing.T) {
	recs := []model.RawRecording{
		rec("1", "A", "2001-01-01", ""),
		rec("2", "B", "", ""),
		rec("3", "A", "2001-01-01", ""),
		rec("4", "A", "2001-01-02", ""),
		rec("5", "", "2001-01-01", ""),
	}
	res := Group(recs, now)

	seen := make(map[string]int)
	for _, g := range res.Groups {
		for _, r := range g.Recordings {
			seen[r.Identifier]++
		}
	}
	for _, id := range []string{"1", "3", "4", "5"} {
		if seen[id] != 1 {
			t.Errorf("recording %s appears %d times, want 1", id, seen[id])
		}
	}
	if seen["2"] != 0 || res.DroppedRecordings != 1 {
		t.Errorf("undated recording should be dropped: seen=%d dropped=%d", seen["2"], res.DroppedRecordings)
	}
	if res.Groups[2].Artist != model.UnknownArtist {
		t.Errorf("missing artist should default to %q, got %q", model.UnknownArtist, res.Groups[2].Artist)
	}
}

func TestResolveVenue(t *testing.T) {
	tests := []struct {
		name   string
		venues []string
		want   string // "" means nil
	}{
		{"majority wins", []string{"A", "B", "A"}, "A"},
		{"tie goes to first seen", []string{"B", "A"}, "B"},
		{"tie not alphabetical", []string{"Zebra Room", "Apple Hall"}, "Zebra Room"},
		{"later majority beats first seen", []string{"B", "A", "A"}, "A"},
		{"unknown venue ignored", []string{"Unknown Venue", "Unknown Venue", "Fillmore"}, "Fillmore"},
		{"nothing usable", []string{"", "Unknown Venue"}, ""},
		{"empty input", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var recs []model.RawRecording
			for i, v := range tt.venues {
				recs = append(recs, model.RawRecording{Identifier: string(rune('a' + i)), Venue: v})
			}
			got := ResolveVenue(recs)
			switch {
			case tt.want == "" && got != nil:
				t.Errorf("got %q, want nil", *got)
			case tt.want != "" && (got == nil || *got != tt.want):
				t.Errorf("got %v, want %q", got, tt.want)
			}
		})
	}
}

func TestGroupTitleAndFallbacks(t *testing.T) {
	recs := []model.RawRecording{{
		Identifier: "ph", Title: "t", Artist: "Phish", Date: day("1995-12-31"),
		Venue: "Madison Square Garden", Location: "New York, NY",
	}}
	g := Group(recs, now).Groups[0]
	if g.Title != "Phish-Madison Square Garden-New York, NY" {
		t.Errorf("title = %q", g.Title)
	}
	if g.Description != "Live performance by Phish" {
		t.Errorf("description = %q", g.Description)
	}
	if g.Source != "Multiple sources available" {
		t.Errorf("source = %q", g.Source)
	}
	if g.Taper != nil || g.Lineage != nil {
		t.Errorf("taper/lineage should be nil, got %v/%v", g.Taper, g.Lineage)
	}

	bare := Group([]model.RawRecording{rec("x", "Phish", "1995-12-31", "Unknown Venue")}, now).Groups[0]
	if bare.Title != "Phish" || bare.Venue != nil || bare.Location != nil {
		t.Errorf("bare group = title %q venue %v location %v", bare.Title, bare.Venue, bare.Location)
	}
}

func TestGroupTakesMetadataFromFirstRecording(t *testing.T) {
	recs := []model.RawRecording{
		{Identifier: "1", Artist: "Dead", Date: day("1977-05-08"), Description: "first", Source: "SBD", Taper: "Betty", Lineage: "reel>dat"},
		{Identifier: "2", Artist: "Dead", Date: day("1977-05-08"), Description: "second", Source: "AUD", Taper: "Other"},
	}
	g := Group(recs, now).Groups[0]
	if g.Description != "first" || g.Source != "SBD" || *g.Taper != "Betty" || *g.Lineage != "reel>dat" {
		t.Errorf("metadata not from first recording: %+v", g)
	}
}

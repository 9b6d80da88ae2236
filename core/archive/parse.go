package archive

import (
	"fmt"
	"strings"
	"time"

	"ConcertHub/model"

	"github.com/goccy/go-json"
)

// Rejection records an upstream recording that failed the strict parse.
type Rejection struct {
	Index      int    `json:"index"`
	Identifier string `json:"identifier,omitempty"`
	Reason     string `json:"reason"`
}

type wireTrack struct {
	TrackNumber *int    `json:"track_number"`
	Title       *string `json:"title"`
	Filename    *string `json:"filename"`
	FileFormat  *string `json:"file_format"`
	FileSize    *int64  `json:"file_size"`
	Duration    *int    `json:"duration"`
	DownloadURL *string `json:"download_url"`
}

type wireRecording struct {
	Identifier  *string     `json:"identifier"`
	Title       *string     `json:"title"`
	Artist      *string     `json:"artist"`
	Date        *string     `json:"date"`
	Venue       *string     `json:"venue"`
	Location    *string     `json:"location"`
	Description *string     `json:"description"`
	Source      *string     `json:"source"`
	Taper       *string     `json:"taper"`
	Lineage     *string     `json:"lineage"`
	TotalTracks *int        `json:"total_tracks"`
	TotalSize   *int64      `json:"total_size"`
	Downloads   *int64      `json:"downloads"`
	Tracks      []wireTrack `json:"tracks"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// ParseDate accepts "YYYY", "YYYY-MM-DD" and ISO timestamps starting with a
// YYYY-MM-DD day. The result is truncated to the day, in UTC. Year-only
// dates become January 1st.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch {
	case len(s) == 4:
		return time.Parse("2006", s)
	case len(s) == 10:
		return time.Parse(model.ConcertDateLayout, s)
	case len(s) > 10 && (s[10] == 'T' || s[10] == ' '):
		return time.Parse(model.ConcertDateLayout, s[:10])
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseTrack(w wireTrack) (model.Track, error) {
	if str(w.Title) == "" {
		return model.Track{}, fmt.Errorf("missing title")
	}
	if str(w.Filename) == "" {
		return model.Track{}, fmt.Errorf("missing filename")
	}
	t := model.Track{
		Title:       *w.Title,
		Filename:    *w.Filename,
		Format:      str(w.FileFormat),
		DownloadURL: str(w.DownloadURL),
	}
	if w.TrackNumber != nil {
		t.TrackNumber = *w.TrackNumber
	}
	if w.FileSize != nil {
		if *w.FileSize < 0 {
			return model.Track{}, fmt.Errorf("negative file_size")
		}
		t.Size = *w.FileSize
	}
	if w.Duration != nil {
		t.Duration = *w.Duration
	}
	return t, nil
}

// parseRecording validates one upstream record field by field.
func parseRecording(raw json.RawMessage) (model.RawRecording, error) {
	var w wireRecording
	if err := json.Unmarshal(raw, &w); err != nil {
		return model.RawRecording{}, fmt.Errorf("decode: %w", err)
	}

	if str(w.Identifier) == "" {
		return model.RawRecording{}, fmt.Errorf("missing identifier")
	}
	if w.Title == nil {
		return model.RawRecording{}, fmt.Errorf("missing title")
	}

	r := model.RawRecording{
		Identifier:  *w.Identifier,
		Title:       *w.Title,
		Artist:      str(w.Artist),
		Venue:       str(w.Venue),
		Location:    str(w.Location),
		Description: str(w.Description),
		Source:      str(w.Source),
		Taper:       str(w.Taper),
		Lineage:     str(w.Lineage),
	}

	if d := str(w.Date); d != "" {
		t, err := ParseDate(d)
		if err != nil {
			return r, fmt.Errorf("date: %w", err)
		}
		r.Date = &t
	}

	if w.TotalTracks != nil {
		if *w.TotalTracks < 0 {
			return r, fmt.Errorf("negative total_tracks")
		}
		r.TotalTracks = *w.TotalTracks
	}
	if w.TotalSize != nil {
		if *w.TotalSize < 0 {
			return r, fmt.Errorf("negative total_size")
		}
		r.TotalSize = *w.TotalSize
	}
	if w.Downloads != nil {
		if *w.Downloads < 0 {
			return r, fmt.Errorf("negative downloads")
		}
		r.Downloads = *w.Downloads
	}

	for i, wt := range w.Tracks {
		t, err := parseTrack(wt)
		if err != nil {
			return r, fmt.Errorf("tracks[%d]: %w", i, err)
		}
		r.Tracks = append(r.Tracks, t)
	}
	return r, nil
}

// ParseRecordings parses each raw record independently. Bad records are
// reported, not fatal.
func ParseRecordings(raws []json.RawMessage) ([]model.RawRecording, []Rejection) {
	recordings := make([]model.RawRecording, 0, len(raws))
	var rejected []Rejection
	for i, raw := range raws {
		r, err := parseRecording(raw)
		if err != nil {
			rejected = append(rejected, Rejection{Index: i, Identifier: r.Identifier, Reason: err.Error()})
			continue
		}
		recordings = append(recordings, r)
	}
	return recordings, rejected
}

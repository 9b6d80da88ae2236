package model

import (
	"strings"
	"time"
)

const (
	UnknownArtist = "Unknown Artist"
	UnknownDate   = "unknown"
	UnknownVenue  = "Unknown Venue"

	// ConcertDateLayout is the day-granularity layout used in identity keys.
	ConcertDateLayout = "2006-01-02"

	identitySeparator = "|"
)

// ConcertIdentity names a concert: the artist and the day it was played.
// Date is either a ConcertDateLayout string or UnknownDate.
type ConcertIdentity struct {
	Artist string
	Date   string
}

// IdentityOf derives the concert identity of a recording.
func IdentityOf(r RawRecording) ConcertIdentity {
	id := ConcertIdentity{Artist: r.Artist, Date: UnknownDate}
	if id.Artist == "" {
		id.Artist = UnknownArtist
	}
	if r.Date != nil {
		id.Date = r.Date.Format(ConcertDateLayout)
	}
	return id
}

// Key serializes the identity as "artist|YYYY-MM-DD".
func (c ConcertIdentity) Key() string {
	return c.Artist + identitySeparator + c.Date
}

// SplitIdentityKey splits a key into its artist and date parts. ok is false
// unless the key holds exactly two "|"-separated parts.
func SplitIdentityKey(key string) (artist, date string, ok bool) {
	parts := strings.Split(key, identitySeparator)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// ConcertGroup is the aggregate of all recordings sharing one identity.
// Groups are built by the grouper and never modified afterwards.
type ConcertGroup struct {
	ID          string    `json:"id"`
	ConcertKey  string    `json:"concert_key"`
	Artist      string    `json:"artist"`
	Date        time.Time `json:"date"`
	Venue       *string   `json:"venue"`
	Location    *string   `json:"location"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	Taper       *string   `json:"taper"`
	Lineage     *string   `json:"lineage"`

	TotalRecordings int   `json:"total_recordings"`
	TotalTracks     int   `json:"total_tracks"`
	TotalSize       int64 `json:"total_size"`
	TotalDownloads  int64 `json:"total_downloads"`

	Recordings []ConcertRecording `json:"recordings"`

	IndexedAt   time.Time `json:"indexed_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// Identity returns the group's concert identity.
func (g ConcertGroup) Identity() ConcertIdentity {
	return ConcertIdentity{Artist: g.Artist, Date: g.Date.Format(ConcertDateLayout)}
}

// VenueName returns the resolved venue or "".
func (g ConcertGroup) VenueName() string {
	if g.Venue == nil {
		return ""
	}
	return *g.Venue
}

// ConcertRecording is a member recording as exposed inside a concert. ID and
// ArchiveIdentifier both carry the upstream identifier.
type ConcertRecording struct {
	ID                string `json:"id"`
	ArchiveIdentifier string `json:"archive_identifier"`
	RawRecording
}

// NewConcertRecording wraps a raw recording for a concert's member list.
func NewConcertRecording(r RawRecording) ConcertRecording {
	return ConcertRecording{ID: r.Identifier, ArchiveIdentifier: r.Identifier, RawRecording: r}
}

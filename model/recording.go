package model

import "time"

// Track is one audio file inside a recording.
type Track struct {
	TrackNumber int    `json:"track_number,omitempty"`
	Title       string `json:"title"`
	Filename    string `json:"filename"`
	Format      string `json:"file_format,omitempty"`
	Size        int64  `json:"file_size,omitempty"`
	Duration    int    `json:"duration,omitempty"` // seconds
	DownloadURL string `json:"download_url,omitempty"`
}

// RawRecording is one upstream-indexed taper upload. Empty strings mean
// the field was absent upstream.
type RawRecording struct {
	Identifier  string     `json:"identifier"`
	Title       string     `json:"title"`
	Artist      string     `json:"artist,omitempty"`
	Date        *time.Time `json:"date,omitempty"` // day precision; year-only dates are Jan 1
	Venue       string     `json:"venue,omitempty"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty"`
	Source      string     `json:"source,omitempty"`
	Taper       string     `json:"taper,omitempty"`
	Lineage     string     `json:"lineage,omitempty"`
	TotalTracks int        `json:"total_tracks"`
	TotalSize   int64      `json:"total_size"`
	Downloads   int64      `json:"downloads"`
	Tracks      []Track    `json:"tracks,omitempty"`
}

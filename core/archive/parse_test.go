package archive

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1995", "1995-01-01", false},
		{"1995-08-16", "1995-08-16", false},
		{"1995-08-16T00:00:00", "1995-08-16", false},
		{"1995-08-16T21:30:00Z", "1995-08-16", false},
		{"1995-08-16 21:30:00", "1995-08-16", false},
		{" 1995-08-16 ", "1995-08-16", false},
		{"08/16/1995", "", true},
		{"1995-13-01", "", true},
		{"199", "", true},
		{"1995-08-16X", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s := got.Format("2006-01-02"); s != tt.want {
				t.Errorf("got %s, want %s", s, tt.want)
			}
		})
	}
}

func TestParseRecordingsRejectsPerField(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"identifier": "ok", "title": "fine", "total_tracks": 3}`),
		json.RawMessage(`{"identifier": "neg", "title": "t", "total_size": -1}`),
		json.RawMessage(`{"identifier": "type", "title": "t", "total_tracks": "many"}`),
		json.RawMessage(`{"identifier": "notitle"}`),
		json.RawMessage(`{"identifier": "track", "title": "t", "tracks": [{"title": "x"}]}`),
		json.RawMessage(`{"identifier": "nodate", "title": "t", "date": null}`),
	}

	recs, rejected := ParseRecordings(raws)
	if len(recs) != 2 || recs[0].Identifier != "ok" || recs[1].Identifier != "nodate" {
		t.Fatalf("unexpected accepted recordings: %+v", recs)
	}
	if recs[1].Date != nil {
		t.Error("null date should stay absent")
	}

	wantReasons := map[int]string{1: "total_size", 2: "decode", 3: "title", 4: "tracks[0]"}
	if len(rejected) != len(wantReasons) {
		t.Fatalf("got %d rejections, want %d: %+v", len(rejected), len(wantReasons), rejected)
	}
	for _, r := range rejected {
		want, ok := wantReasons[r.Index]
		if !ok || !strings.Contains(r.Reason, want) {
			t.Errorf("rejection %+v: expected reason containing %q", r, want)
		}
	}
}

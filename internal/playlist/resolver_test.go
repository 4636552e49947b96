package playlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"tubegrab/internal/downloads/downloadstest"
	"tubegrab/internal/models"
)

func playlistJSON(ids ...string) []byte {
	entries := make([]string, len(ids))
	for i, id := range ids {
		if id == "" {
			entries[i] = `{"_type": "url", "title": "no id"}`
			continue
		}
		entries[i] = fmt.Sprintf(`{"_type": "url", "id": %q, "title": "Video %s", "url": "https://www.youtube.com/watch?v=%s", "duration": 75}`, id, id, id)
	}
	return []byte(`{"_type": "playlist", "id": "PL1", "title": "My list", "webpage_url": "https://www.youtube.com/playlist?list=PL1", "entries": [` + strings.Join(entries, ",") + `]}`)
}

// TestResolvePlaylistOrder checks N entries come back in source order.
func TestResolvePlaylistOrder(t *testing.T) {
	t.Parallel()
	const u = "https://m.youtube.com/playlist?list=PL1"
	fake := downloadstest.New(nil)
	fake.Probes[u] = downloadstest.ProbeResult{JSON: playlistJSON("c", "a", "b", "a")}

	p, err := New(fake, 0).Resolve(context.Background(), u)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !p.IsPlaylist || p.Title != "My list" || p.Source != "youtube.com" {
		t.Fatalf("unexpected playlist: %+v", p)
	}
	want := []string{"c", "a", "b", "a"}
	if len(p.Items) != len(want) {
		t.Fatalf("expected %d items, got: %d", len(want), len(p.Items))
	}
	for i, id := range want {
		if p.Items[i].ID != id {
			t.Errorf("item %d: expected %q, got: %q", i, id, p.Items[i].ID)
		}
	}
	if p.Items[0].Duration != "1:15" || p.Items[0].URL != "https://www.youtube.com/watch?v=c" {
		t.Fatalf("unexpected item fields: %+v", p.Items[0])
	}
}

// TestResolveSingle checks a single item URL yields exactly one item.
func TestResolveSingle(t *testing.T) {
	t.Parallel()
	const u = "https://vimeo.com/12345"
	fake := downloadstest.New(nil)
	fake.Probes[u] = downloadstest.ProbeResult{JSON: []byte(`{"_type": "video", "id": "12345", "title": "Clip", "duration": 3725, "upload_date": "20240131"}`)}

	p, err := New(fake, 0).Resolve(context.Background(), u)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if p.IsPlaylist || len(p.Items) != 1 {
		t.Fatalf("expected one item, got: %+v", p)
	}
	it := p.Items[0]
	if it.URL != u || it.Duration != "1:02:05" {
		t.Fatalf("unexpected item: %+v", it)
	}
	if want := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC); !it.UploadDate.Equal(want) {
		t.Fatalf("expected upload date %v, got: %v", want, it.UploadDate)
	}
}

// TestResolveSkipsInvalidEntries checks null and id-less entries are dropped.
func TestResolveSkipsInvalidEntries(t *testing.T) {
	t.Parallel()
	raw := []byte(`{"_type": "playlist", "id": "PL", "entries": [null, {"id": "x", "title": "X"}, {"title": "no id"}]}`)
	p, err := Parse(raw, "https://example.com/pl")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(p.Items) != 1 || p.Items[0].ID != "x" {
		t.Fatalf("expected only item x, got: %+v", p.Items)
	}
}

// TestResolveErrors checks every failure is a ResolutionError.
func TestResolveErrors(t *testing.T) {
	t.Parallel()
	fake := downloadstest.New(nil)
	fake.Probes["https://example.com/empty"] = downloadstest.ProbeResult{JSON: playlistJSON()}
	fake.Probes["https://example.com/onlybad"] = downloadstest.ProbeResult{JSON: playlistJSON("", "")}
	fake.Probes["https://example.com/garbage"] = downloadstest.ProbeResult{JSON: []byte("<html>")}
	fake.Probes["https://example.com/down"] = downloadstest.ProbeResult{Err: &models.FetchError{Kind: models.FaultTransient, Cause: "Unable to download webpage: timed out"}}

	tests := map[string]string{
		"":                            "malformed URL",
		"not a url":                   "malformed URL",
		"ftp://example.com/file":      "malformed URL",
		"https://":                    "malformed URL",
		"https://example.com/empty":   "no downloadable items",
		"https://example.com/onlybad": "no downloadable items",
		"https://example.com/garbage": "unreadable metadata",
		"https://example.com/down":    "timed out",
		"https://example.com/unknown": "Unsupported URL",
	}

	r := New(fake, 10)
	for in, want := range tests {
		_, err := r.Resolve(context.Background(), in)
		var re *models.ResolutionError
		if !errors.As(err, &re) {
			t.Errorf("%q: expected ResolutionError, got: %v", in, err)
			continue
		}
		if !strings.Contains(re.Error(), want) {
			t.Errorf("%q: expected error containing %q, got: %v", in, want, re)
		}
	}
}

// TestFormatDuration checks duration rendering.
func TestFormatDuration(t *testing.T) {
	t.Parallel()
	tests := map[float64]string{0: "", 5: "0:05", 59.6: "1:00", 600: "10:00", 3600: "1:00:00"}
	for in, want := range tests {
		if got := FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%v) = %q, want %q", in, got, want)
		}
	}
}

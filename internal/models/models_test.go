package models

import (
	"errors"
	"testing"
)

// TestParseQuality checks every document form parses and round-trips.
func TestParseQuality(t *testing.T) {
	t.Parallel()
	for _, q := range QualityChoices() {
		got, err := ParseQuality(q.String())
		if err != nil {
			t.Fatalf("parse %q: %v", q, err)
		}
		if got != q {
			t.Errorf("expected %v, got: %v", q, got)
		}
	}

	for _, bad := range []string{"", "4k", "2160p", "999p", "hd"} {
		if _, err := ParseQuality(bad); !errors.Is(err, ErrInvalidQuality) {
			t.Errorf("expected ErrInvalidQuality for %q, got: %v", bad, err)
		}
	}
}

// TestParseFormat checks case-insensitive parsing.
func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := map[string]Format{"mp4": FormatMP4, "MKV": FormatMKV, "webm": FormatWebM, " Mp3 ": FormatMP3}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFormat("avi"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got: %v", err)
	}
}

// TestFormatValidIsCaseSensitive checks only canonical values are valid as-is.
func TestFormatValidIsCaseSensitive(t *testing.T) {
	t.Parallel()
	for _, f := range FormatChoices() {
		if !f.Valid() {
			t.Errorf("expected %q to be valid", f)
		}
	}
	for _, f := range []Format{"mp3", "Mp4", "webm", "mkv", ""} {
		if f.Valid() {
			t.Errorf("expected %q to be invalid until parsed", f)
		}
	}
	// Lowercase MP3 must still force audio once parsed.
	f, err := ParseFormat("mp3")
	if err != nil || EffectiveQuality(MustCap(720), f) != AudioOnly() {
		t.Fatalf("expected parsed mp3 to force AudioOnly, got %v (%v)", f, err)
	}
}

// TestMP3ForcesAudioOnly checks MP3 always downloads audio only.
func TestMP3ForcesAudioOnly(t *testing.T) {
	t.Parallel()
	for _, q := range QualityChoices() {
		if got := EffectiveQuality(q, FormatMP3); got != AudioOnly() {
			t.Errorf("quality %v with MP3: expected AudioOnly, got: %v", q, got)
		}
		if got := EffectiveQuality(q, FormatMKV); got != q {
			t.Errorf("quality %v with MKV: expected unchanged, got: %v", q, got)
		}
	}
}

// TestCapResolution checks only the supported heights are accepted.
func TestCapResolution(t *testing.T) {
	t.Parallel()
	if _, err := CapResolution(240); err == nil {
		t.Fatal("expected error for 240")
	}
	q, err := CapResolution(720)
	if err != nil || !q.Valid() || q.String() != "720p" {
		t.Fatalf("expected valid 720p, got: %v (%v)", q, err)
	}
	if (Quality{Mode: QualityBest, MaxHeight: 720}).Valid() {
		t.Fatal("Best with a height should be invalid")
	}
}

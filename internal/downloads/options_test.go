package downloads

import (
	"slices"
	"strings"
	"testing"

	"tubegrab/internal/models"
)

// TestFormatArgs checks the format selection flags for each quality and container.
func TestFormatArgs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		quality models.Quality
		format  models.Format
		want    []string
	}{
		{
			name:    "best mkv",
			quality: models.Best(),
			format:  models.FormatMKV,
			want:    []string{"-f", "bv*+ba/b", "--merge-output-format", "mkv", "--remux-video", "mkv"},
		},
		{
			name:    "720p mp4",
			quality: models.MustCap(720),
			format:  models.FormatMP4,
			want: []string{"-f", "bv*[height<=720][ext=mp4]+ba[ext=m4a]/bv*[height<=720]+ba/b[height<=720]",
				"--merge-output-format", "mp4", "--remux-video", "mp4"},
		},
		{
			name:    "360p webm",
			quality: models.MustCap(360),
			format:  models.FormatWebM,
			want: []string{"-f", "bv*[height<=360][ext=webm]+ba[ext=webm]/bv*[height<=360]+ba/b[height<=360]",
				"--merge-output-format", "webm", "--remux-video", "webm"},
		},
		{
			name:    "audio only mp4",
			quality: models.AudioOnly(),
			format:  models.FormatMP4,
			want:    []string{"-f", "ba/b", "-x", "--audio-format", "m4a"},
		},
		{
			name:    "mp3",
			quality: models.Best(),
			format:  models.FormatMP3,
			want:    []string{"-f", "ba/b", "-x", "--audio-format", "mp3", "--audio-quality", "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatArgs(tt.quality, tt.format); !slices.Equal(got, tt.want) {
				t.Fatalf("expected %q, got: %q", tt.want, got)
			}
		})
	}
}

// TestMP3ArgsIdempotent checks every quality yields the same MP3 flags.
func TestMP3ArgsIdempotent(t *testing.T) {
	t.Parallel()
	want := FormatArgs(models.AudioOnly(), models.FormatMP3)
	for _, q := range models.QualityChoices() {
		if got := FormatArgs(q, models.FormatMP3); !slices.Equal(got, want) {
			t.Errorf("quality %v: expected %q, got: %q", q, want, got)
		}
	}
}

// TestBuildArgs checks the full command line layout.
func TestBuildArgs(t *testing.T) {
	t.Parallel()
	y := New(Config{CookieFile: "/tmp/c.txt", CookiesFromBrowser: "firefox", RestrictFilenames: true})
	job := models.Job{ID: 1, ItemID: "abc", URL: "https://example.com/v/abc", Directory: "/media", Quality: models.MustCap(480), Format: models.FormatMKV}

	args := y.BuildArgs(job)
	joined := strings.Join(args, " ")

	if args[len(args)-1] != job.URL || args[len(args)-2] != "--" {
		t.Fatalf("expected URL last after --, got: %q", args)
	}
	for _, want := range []string{"-P /media", "-o %(title)s.%(ext)s", "--cookies /tmp/c.txt", "--restrict-filenames", "--newline", "[height<=480]"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in %q", want, joined)
		}
	}
	if strings.Contains(joined, "--cookies-from-browser") {
		t.Errorf("cookie file should win over browser cookies: %q", joined)
	}
}

// TestProbeArgs checks the metadata query flags.
func TestProbeArgs(t *testing.T) {
	t.Parallel()
	y := New(Config{})
	got := y.ProbeArgs("https://example.com/list", 500)
	want := []string{"--flat-playlist", "-J", "--no-warnings", "--playlist-end", "500", "--", "https://example.com/list"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %q, got: %q", want, got)
	}
}

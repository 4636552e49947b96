package downloads

import (
	"testing"
	"time"

	"tubegrab/internal/domain/consts"
	"tubegrab/internal/models"
)

// TestParseLine checks progress, output and post-processing lines are recognised.
func TestParseLine(t *testing.T) {
	t.Parallel()

	kind, ev, _ := parseLine(`[tubegrab] {"status": "downloading", "downloaded_bytes": 250, "total_bytes": 1000, "speed": 1024.5, "eta": 3}`)
	if kind != lineProgress || ev.Phase != consts.PhaseDownloading {
		t.Fatalf("expected downloading event, got: %v %+v", kind, ev)
	}
	if ev.BytesDone != 250 || ev.BytesTotal != 1000 || ev.Fraction != 0.25 || ev.ETA != 3*time.Second || ev.SpeedBps != 1024.5 {
		t.Fatalf("unexpected event fields: %+v", ev)
	}

	kind, ev, _ = parseLine(`[tubegrab] {"status": "downloading", "downloaded_bytes": 10, "total_bytes": null, "total_bytes_estimate": null}`)
	if kind != lineProgress || !ev.IsIndeterminate() || ev.BytesTotal != 0 {
		t.Fatalf("expected indeterminate event, got: %+v", ev)
	}

	_, ev, _ = parseLine(`[tubegrab] {"status": "downloading", "fragment_index": 5, "fragment_count": 10}`)
	if ev.Fraction != 0.5 {
		t.Fatalf("expected fragment based fraction 0.5, got: %v", ev.Fraction)
	}

	_, ev, _ = parseLine(`[tubegrab] {"status": "started", "postprocessor": "Merger"}`)
	if ev.Phase != consts.PhaseMerging {
		t.Fatalf("expected merging from postprocess line, got: %+v", ev)
	}

	kind, ev, _ = parseLine(`[Merger] Merging formats into "/dl/a.mkv"`)
	if kind != lineProgress || ev.Phase != consts.PhaseMerging {
		t.Fatalf("expected merging from merger line, got: %+v", ev)
	}

	kind, _, path := parseLine("[tubegrab:file] /dl/My_Video.mp4")
	if kind != lineOutputPath || path != "/dl/My_Video.mp4" {
		t.Fatalf("expected output path, got: %v %q", kind, path)
	}

	if kind, _, _ := parseLine("[youtube] abc: Downloading webpage"); kind != lineOther {
		t.Fatalf("expected other line, got: %v", kind)
	}
	if kind, _, _ := parseLine("[tubegrab] not json"); kind != lineOther {
		t.Fatalf("expected malformed progress to be ignored, got: %v", kind)
	}
}

// TestParseFinishedFraction checks a finished stream reports completion.
func TestParseFinishedFraction(t *testing.T) {
	t.Parallel()
	ev, ok := parseProgressJSON(`{"status": "finished", "downloaded_bytes": 4096}`)
	if !ok || ev.Fraction != 1 || ev.BytesTotal != 4096 {
		t.Fatalf("unexpected finished event: %+v", ev)
	}
	if ev.Err() != nil {
		t.Fatalf("expected no error on progress event")
	}
	if (models.ProgressEvent{Phase: consts.PhaseErrored}).Err().Kind != models.FaultPermanent {
		t.Fatal("expected unclassified errored event to be permanent")
	}
}

// TestClassify checks cause classification.
func TestClassify(t *testing.T) {
	t.Parallel()
	tests := map[string]models.FaultKind{
		"Unable to download webpage: <urlopen error timed out>":              models.FaultTransient,
		"unable to download video data: HTTP Error 503: Service Unavailable": models.FaultTransient,
		"HTTP Error 429: Too Many Requests":                                  models.FaultTransient,
		"[Errno 104] Connection reset by peer":                               models.FaultTransient,
		"Unsupported URL: https://example.com/nothing":                       models.FaultPermanent,
		"[youtube] abc: Video unavailable. This video is private":            models.FaultPermanent,
		"The uploader has not made this video available in your country":     models.FaultPermanent,
		"Requested format is not available. Use --list-formats":              models.FaultPermanent,
		"Unable to download webpage: HTTP Error 404: Not Found":              models.FaultPermanent,
		"something nobody has seen before":                                   models.FaultPermanent,
	}
	for cause, want := range tests {
		if got := Classify(cause); got != want {
			t.Errorf("Classify(%q) = %v, want %v", cause, got, want)
		}
	}
}

// TestStderrCollector checks the last ERROR line wins and output is bounded.
func TestStderrCollector(t *testing.T) {
	t.Parallel()
	c := &stderrCollector{limit: 32}
	c.add("WARNING: slow")
	c.add("ERROR: first")
	c.add("ERROR: [generic] second failure")
	if got := c.cause("fallback"); got != "[generic] second failure" {
		t.Fatalf("expected last error line, got: %q", got)
	}
	if c.b.Len() > 32 {
		t.Fatalf("expected bounded buffer, got %d bytes", c.b.Len())
	}

	empty := &stderrCollector{limit: 32}
	empty.add("WARNING: only a warning")
	if got := empty.cause("exit status 1"); got != "exit status 1" {
		t.Fatalf("expected fallback, got: %q", got)
	}
}

package cfg

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"tubegrab/internal/domain/consts"
	"tubegrab/internal/models"
	"tubegrab/internal/session"
)

func jobUpdate(id int, title string, status consts.JobStatus) session.Update {
	return session.Update{Kind: session.UpdateJob, Job: models.Job{ID: id, ItemID: title, Title: title, Status: status}}
}

func progressUpdate(id int, done, total int64) session.Update {
	return session.Update{Kind: session.UpdateProgress, Event: models.ProgressEvent{
		JobID:      id,
		Phase:      consts.PhaseDownloading,
		BytesDone:  done,
		BytesTotal: total,
		Fraction:   float64(done) / float64(total),
		SpeedBps:   2048,
		ETA:        3 * time.Second,
	}}
}

// TestRedirectedOutputPrintsLines checks non-terminal output gets the plain line view.
func TestRedirectedOutputPrintsLines(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	view := newProgressView(&buf)
	if _, ok := view.(*printer); !ok {
		t.Fatalf("expected line printer for a buffer, got %T", view)
	}

	view.update(jobUpdate(1, "One", consts.JobRunning))
	view.update(progressUpdate(1, 512, 1024))
	view.summary(models.Summary{SessionID: "s1", Outcome: consts.OutcomeCompleted, Succeeded: 1, Total: 1}, nil)

	out := buf.String()
	for _, want := range []string{"[1/1] One  50.0% of 1.0KiB at 2.0KiB/s", "Session s1: completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestBarViewSettlesEveryBar checks bars track progress and the summary never hangs on unfinished jobs.
func TestBarViewSettlesEveryBar(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	v := newBarView(&buf)

	v.update(jobUpdate(1, "One", consts.JobPending))
	v.update(jobUpdate(2, "Two", consts.JobPending))
	v.update(jobUpdate(3, "Three", consts.JobPending))
	v.update(jobUpdate(1, "One", consts.JobRunning))
	v.update(progressUpdate(1, 256, 1024))
	v.update(progressUpdate(1, 1024, 1024))
	v.update(jobUpdate(1, "One", consts.JobSucceeded))
	v.update(jobUpdate(2, "Two", consts.JobRunning))
	v.update(progressUpdate(2, 100, 1024))
	v.update(jobUpdate(2, "Two", consts.JobFailed))
	v.update(jobUpdate(3, "Three", consts.JobRunning))
	v.update(progressUpdate(3, 10, 1024))

	if len(v.bars) != 3 {
		t.Fatalf("expected a bar per started job, got %d", len(v.bars))
	}
	if got := v.label(1); got != "[1/3] One" {
		t.Fatalf("unexpected label %q", got)
	}

	done := make(chan struct{})
	go func() {
		v.summary(models.Summary{SessionID: "s2", Outcome: consts.OutcomeCancelled, Succeeded: 1, Failed: 1, Cancelled: 1, Total: 3}, nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("summary did not return")
	}

	if !v.bars[1].bar.Completed() {
		t.Error("expected the succeeded job's bar to complete")
	}
	if v.bars[2].bar.Completed() || !v.bars[2].bar.Aborted() || !v.bars[3].bar.Aborted() {
		t.Error("expected unfinished bars to be aborted")
	}
	if !strings.Contains(buf.String(), "Session s2: cancelled") {
		t.Fatalf("summary missing from output:\n%s", buf.String())
	}
}

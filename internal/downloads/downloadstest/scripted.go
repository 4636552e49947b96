// Package downloadstest provides a scripted Fetcher and Prober for tests.
package downloadstest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tubegrab/internal/domain/consts"
	"tubegrab/internal/models"
)

// Outcome describes how one fetch attempt plays out.
type Outcome struct {
	Steps    int              // Downloading events before the end
	Fault    models.FaultKind // FaultNone succeeds
	Cause    string
	Block    bool // wait for cancellation after the first step
	Truncate bool // close the stream without a terminal event
	Delay    time.Duration
}

// Succeed is an attempt that downloads in three steps.
func Succeed() Outcome { return Outcome{Steps: 3} }

// Transient is an attempt failing with a retryable cause.
func Transient(cause string) Outcome {
	return Outcome{Steps: 1, Fault: models.FaultTransient, Cause: cause}
}

// Permanent is an attempt failing with a non-retryable cause.
func Permanent(cause string) Outcome {
	return Outcome{Steps: 1, Fault: models.FaultPermanent, Cause: cause}
}

// Block is an attempt which runs until cancelled.
func Block() Outcome { return Outcome{Steps: 1, Block: true} }

// ByItem plans attempts per item ID; the last outcome repeats and unknown items succeed.
func ByItem(plan map[string][]Outcome) func(models.Job, int) Outcome {
	return func(j models.Job, attempt int) Outcome {
		seq := plan[j.ItemID]
		if len(seq) == 0 {
			return Succeed()
		}
		if attempt > len(seq) {
			return seq[len(seq)-1]
		}
		return seq[attempt-1]
	}
}

// Scripted is a test double for downloads.Fetcher and downloads.Prober.
type Scripted struct {
	Plan   func(job models.Job, attempt int) Outcome
	Probes map[string]ProbeResult

	mu       sync.Mutex
	attempts map[int]int
	fetched  []models.Job
	started  chan int
	paused   bool
	pauses   int
}

// ProbeResult is the canned answer for one probed URL.
type ProbeResult struct {
	JSON []byte
	Err  error
}

// New returns a double following plan (nil succeeds every attempt).
func New(plan func(models.Job, int) Outcome) *Scripted {
	return &Scripted{
		Plan:     plan,
		Probes:   map[string]ProbeResult{},
		attempts: map[int]int{},
		started:  make(chan int, 256),
	}
}

// Started yields the job ID of every fetch attempt as it begins.
func (s *Scripted) Started() <-chan int {
	return s.started
}

// Attempts returns how many times job id was fetched.
func (s *Scripted) Attempts(id int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[id]
}

// Fetched returns every job passed to Fetch, in call order.
func (s *Scripted) Fetched() []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Job(nil), s.fetched...)
}

// Pause records that in-flight downloads were suspended.
func (s *Scripted) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	s.pauses++
	return nil
}

// Resume records that in-flight downloads were continued.
func (s *Scripted) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	return nil
}

// Paused reports whether the double is currently suspended and how many times it was.
func (s *Scripted) Paused() (bool, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused, s.pauses
}

// Fetch plays out the planned outcome for the job's next attempt.
func (s *Scripted) Fetch(ctx context.Context, job models.Job) <-chan models.ProgressEvent {
	s.mu.Lock()
	s.attempts[job.ID]++
	attempt := s.attempts[job.ID]
	s.fetched = append(s.fetched, job)
	s.mu.Unlock()

	o := Succeed()
	if s.Plan != nil {
		o = s.Plan(job, attempt)
	}

	out := make(chan models.ProgressEvent)
	go func() {
		defer close(out)
		send := func(ev models.ProgressEvent) {
			ev.JobID = job.ID
			ev.At = time.Now()
			out <- ev
		}

		select {
		case s.started <- job.ID:
		default:
		}

		if ctx.Err() != nil {
			send(cancelledEvent())
			return
		}
		send(models.ProgressEvent{Phase: consts.PhaseResolving, Fraction: models.Indeterminate})

		const total = 1000
		for i := 1; i <= o.Steps; i++ {
			if o.Delay > 0 {
				select {
				case <-time.After(o.Delay):
				case <-ctx.Done():
					send(cancelledEvent())
					return
				}
			}
			done := int64(total * i / max(o.Steps, 1))
			send(models.ProgressEvent{
				Phase:      consts.PhaseDownloading,
				BytesDone:  done,
				BytesTotal: total,
				Fraction:   float64(done) / total,
			})
		}

		switch {
		case o.Block:
			<-ctx.Done()
			send(cancelledEvent())
		case o.Truncate:
		case o.Fault != models.FaultNone:
			send(models.ProgressEvent{Phase: consts.PhaseErrored, Fraction: models.Indeterminate, Fault: o.Fault, Cause: o.Cause})
		default:
			if !job.Format.IsAudio() {
				send(models.ProgressEvent{Phase: consts.PhaseMerging, Fraction: models.Indeterminate, Message: "Merger"})
			}
			send(models.ProgressEvent{
				Phase:      consts.PhaseFinished,
				Fraction:   1,
				OutputPath: fmt.Sprintf("%s/%s.%s", job.Directory, job.ItemID, job.Format.Ext()),
			})
		}
	}()
	return out
}

// Probe returns the canned result for url.
func (s *Scripted) Probe(_ context.Context, url string, _ int) ([]byte, error) {
	r, ok := s.Probes[url]
	if !ok {
		return nil, &models.FetchError{Kind: models.FaultPermanent, Cause: "Unsupported URL: " + url}
	}
	return r.JSON, r.Err
}

func cancelledEvent() models.ProgressEvent {
	return models.ProgressEvent{Phase: consts.PhaseErrored, Fraction: models.Indeterminate, Fault: models.FaultCancelled, Cause: "cancelled"}
}

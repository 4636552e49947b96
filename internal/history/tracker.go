// Package history records session progress into the history store.
package history

import (
	"context"
	"sync"
	"time"

	"tubegrab/internal/contracts"
	"tubegrab/internal/domain/consts"
	"tubegrab/internal/domain/logger"
	"tubegrab/internal/models"
)

type update struct {
	session *models.SessionRecord
	job     *models.JobRecord
}

// Tracker batches session and job snapshots into the history store.
type Tracker struct {
	store      contracts.HistoryStore
	updates    chan update
	flushTimer time.Duration

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
	exited  chan struct{}
}

// NewTracker returns the tracker used for recording session history.
func NewTracker(store contracts.HistoryStore) *Tracker {
	return &Tracker{
		store:      store,
		updates:    make(chan update, consts.TrackerBuffer),
		flushTimer: 500 * time.Millisecond,
		done:       make(chan struct{}),
		exited:     make(chan struct{}),
	}
}

// Start starts history tracking.
func (t *Tracker) Start() {
	go t.processUpdates()
}

// Stop drains pending updates, writes them and waits for the writer to exit.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		<-t.exited
		return
	}
	t.stopped = true
	close(t.done)
	t.mu.Unlock()
	<-t.exited
}

// RecordSession queues a session snapshot.
func (t *Tracker) RecordSession(rec models.SessionRecord) {
	t.send(update{session: &rec})
}

// RecordJob queues a job snapshot.
func (t *Tracker) RecordJob(sessionID string, job models.Job) {
	rec := models.NewJobRecord(sessionID, job)
	t.send(update{job: &rec})
}

func (t *Tracker) send(u update) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		logger.Pl.D(2, "History tracker stopped, dropping update")
		return
	}
	t.updates <- u
}

// processUpdates collects updates and writes them on each tick.
func (t *Tracker) processUpdates() {
	defer close(t.exited)
	ticker := time.NewTicker(t.flushTimer)
	defer ticker.Stop()

	var pending []update
	for {
		select {
		case <-t.done:
			for {
				select {
				case u := <-t.updates:
					pending = append(pending, u)
				default:
					t.flushUpdates(pending)
					return
				}
			}
		case u := <-t.updates:
			pending = append(pending, u)
			if len(pending) >= consts.TrackerBuffer {
				t.flushUpdates(pending)
				pending = nil
			}
		case <-ticker.C:
			t.flushUpdates(pending)
			pending = nil
		}
	}
}

// flushUpdates writes pending updates to the database in arrival order.
//
// Job rows are grouped between session writes so foreign keys are satisfied.
func (t *Tracker) flushUpdates(updates []update) {
	if len(updates) == 0 {
		return
	}

	var jobs []models.JobRecord
	for _, u := range updates {
		if u.session != nil {
			t.writeJobs(jobs)
			jobs = nil
			rec := *u.session
			t.write("session "+rec.ID, func(ctx context.Context) error {
				return t.store.UpsertSession(ctx, rec)
			})
			continue
		}
		jobs = append(jobs, *u.job)
	}
	t.writeJobs(jobs)

	logger.Pl.D(2, "Successfully flushed %d history updates", len(updates))
}

func (t *Tracker) writeJobs(jobs []models.JobRecord) {
	if len(jobs) == 0 {
		return
	}
	t.write("job batch", func(ctx context.Context) error {
		return t.store.UpsertJobs(ctx, jobs)
	})
}

// write runs fn with a timeout, retrying transient failures.
func (t *Tracker) write(what string, fn func(ctx context.Context) error) {
	const maxRetries = 3

	for attempt := 0; attempt < maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), consts.DatabaseTimeout)
		err := fn(ctx)
		cancel()
		if err == nil {
			return
		}
		if attempt == maxRetries-1 {
			logger.Pl.E("Failed to write history for %s after %d attempts: %v", what, maxRetries, err)
			return
		}
		logger.Pl.W("Retrying history write for %s after failure (attempt %d/%d): %v",
			what, attempt+1, maxRetries, err)
		time.Sleep(consts.RetryBackoff * time.Duration(attempt+1))
	}
}

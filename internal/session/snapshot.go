package session

import (
	"tubegrab/internal/domain/consts"
	"tubegrab/internal/models"
)

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() consts.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Jobs returns a snapshot of every job in order.
func (s *Session) Jobs() []models.Job {
	return s.queue.Snapshot()
}

// Log returns a snapshot of the session log.
func (s *Session) Log() []models.LogEntry {
	return s.log.Entries()
}

// LastEvent returns the most recent progress event of a job.
func (s *Session) LastEvent(jobID int) (models.ProgressEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.lastEvents[jobID]
	return ev, ok
}

// Playlist returns the resolved playlist, or nil before resolution.
func (s *Session) Playlist() *models.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playlist
}

// Err returns the session-level error, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done is closed once the session has finished or been cancelled.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session is done and returns its summary.
func (s *Session) Wait() models.Summary {
	<-s.done
	return s.Summary()
}

// Summary returns the final tally; it is zero until the session is done.
func (s *Session) Summary() models.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// Subscribe returns a stream of updates and a function ending the subscription.
//
// The stream is closed when the session ends. A buffer below one uses the
// session default; when it fills, the oldest update is dropped.
func (s *Session) Subscribe(buffer int) (<-chan Update, func()) {
	if buffer < 1 {
		buffer = s.opts.SubscriberBuffer
	}
	return s.bus.subscribe(buffer)
}

// Record returns the session in its history form.
func (s *Session) Record() models.SessionRecord {
	s.mu.Lock()
	rec := models.SessionRecord{
		ID:         s.id,
		URL:        s.req.URL,
		Quality:    s.req.Quality.String(),
		Format:     string(s.req.Format),
		Directory:  s.req.Directory,
		State:      s.state,
		Outcome:    s.summary.Outcome,
		Succeeded:  s.summary.Succeeded,
		Failed:     s.summary.Failed,
		Cancelled:  s.summary.Cancelled,
		Total:      s.queue.Len(),
		Error:      s.summary.Err,
		StartedAt:  s.startedAt,
		FinishedAt: s.finishedAt,
	}
	if s.playlist != nil {
		rec.Title = s.playlist.Title
	}
	s.mu.Unlock()
	return rec
}

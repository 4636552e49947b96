// Package session runs one batch download from URL to summary.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tubegrab/internal/domain/consts"
	"tubegrab/internal/domain/logger"
	"tubegrab/internal/downloads"
	"tubegrab/internal/models"
	"tubegrab/internal/queue"

	"github.com/google/uuid"
)

// Resolver expands a URL into items.
type Resolver interface {
	Resolve(ctx context.Context, url string) (*models.Playlist, error)
}

// ConfigSaver persists the options a session ran with.
type ConfigSaver interface {
	Save(models.SessionConfig) error
}

// Recorder receives session and job snapshots for history.
//
// Calls are made from the orchestration goroutines and must not block for long.
type Recorder interface {
	RecordSession(rec models.SessionRecord)
	RecordJob(sessionID string, job models.Job)
}

// Deps are the collaborators of a session. Config and Recorder may be nil.
type Deps struct {
	Resolver Resolver
	Fetcher  downloads.Fetcher
	Config   ConfigSaver
	Recorder Recorder
}

// Options tune the orchestration policy.
type Options struct {
	Workers          int
	MaxAttempts      int
	RetryInterval    time.Duration
	SubscriberBuffer int
}

// DefaultOptions returns sequential downloads with three attempts per job.
func DefaultOptions() Options {
	return Options{
		Workers:          consts.DefaultWorkers,
		MaxAttempts:      consts.DefaultMaxAttempts,
		RetryInterval:    consts.RetryInterval,
		SubscriberBuffer: consts.DefaultSubscriberBuffer,
	}
}

// Request is what the user asked to download.
type Request struct {
	URL       string
	Quality   models.Quality
	Format    models.Format
	Directory string
}

// Session is one batch download.
//
// Start launches the work on its own goroutines; every other method may be
// called concurrently at any time.
type Session struct {
	id    string
	deps  Deps
	opts  Options
	queue *queue.JobQueue
	log   *Log
	bus   *broker

	mu         sync.Mutex
	state      consts.SessionState
	started    bool
	req        Request
	playlist   *models.Playlist
	lastEvents map[int]models.ProgressEvent
	err        error
	fatal      bool
	summary    models.Summary
	startedAt  time.Time
	finishedAt time.Time
	stop       context.CancelFunc
	resume     chan struct{} // non-nil while paused

	pauseMu   sync.Mutex
	cancelled atomic.Bool
	done      chan struct{}
}

// New returns an idle session.
func New(deps Deps, opts Options) *Session {
	def := DefaultOptions()
	if opts.Workers < 1 {
		opts.Workers = def.Workers
	}
	if opts.Workers > consts.MaxWorkers {
		opts.Workers = consts.MaxWorkers
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if opts.RetryInterval < 0 {
		opts.RetryInterval = 0
	}
	if opts.SubscriberBuffer < 1 {
		opts.SubscriberBuffer = def.SubscriberBuffer
	}
	return &Session{
		id:         uuid.NewString(),
		deps:       deps,
		opts:       opts,
		queue:      queue.New(),
		log:        newLog(),
		bus:        newBroker(),
		state:      consts.SessionIdle,
		lastEvents: make(map[int]models.ProgressEvent),
		done:       make(chan struct{}),
	}
}

// Start validates req and begins the session without waiting for it.
func (s *Session) Start(ctx context.Context, req Request) error {
	if s.deps.Resolver == nil || s.deps.Fetcher == nil {
		return errors.New("session needs a resolver and a fetcher")
	}
	if !req.Quality.Valid() {
		return fmt.Errorf("%w: %v", models.ErrInvalidQuality, req.Quality)
	}
	format, err := models.ParseFormat(string(req.Format))
	if err != nil {
		return err
	}
	req.Format = format
	if strings.TrimSpace(req.Directory) == "" {
		return errors.New("target directory is empty")
	}

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return models.ErrSessionStarted
	}
	s.started = true
	s.req = req
	s.startedAt = time.Now()
	ctx, s.stop = context.WithCancel(ctx)
	s.mu.Unlock()

	go s.run(ctx)
	return nil
}

// Cancel stops the session. The in-flight jobs and every pending job end Cancelled.
func (s *Session) Cancel() {
	s.cancelled.Store(true)

	s.mu.Lock()
	stop := s.stop
	idle := !s.started
	if idle {
		s.started = true
		s.startedAt = time.Now()
	}
	s.mu.Unlock()

	if idle {
		s.logf(0, "Session cancelled before it started")
		s.finish(consts.SessionCancelled)
		return
	}
	if stop != nil {
		stop()
	}
}

// Pause holds the session: no job starts until Resume and the fetcher's
// in-flight downloads are suspended when it supports that. Cancel still works
// while paused.
func (s *Session) Pause() error {
	s.pauseMu.Lock()
	defer s.pauseMu.Unlock()

	s.mu.Lock()
	if s.state != consts.SessionResolving && s.state != consts.SessionRunning {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", models.ErrNotRunning, st)
	}
	if s.resume != nil {
		s.mu.Unlock()
		return nil
	}
	s.resume = make(chan struct{})
	s.mu.Unlock()

	s.logf(0, "Paused")
	if p, ok := s.deps.Fetcher.(downloads.Pauser); ok {
		if err := p.Pause(); err != nil {
			s.logf(0, "Warning: running downloads could not be suspended: %v", err)
		}
	}
	return nil
}

// Resume lets a paused session continue. It is a no-op unless paused.
func (s *Session) Resume() error {
	s.pauseMu.Lock()
	defer s.pauseMu.Unlock()
	if s.release() {
		s.logf(0, "Resumed")
	}
	return nil
}

// Paused reports whether the session is on hold.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resume != nil
}

// release clears the hold and continues the fetcher. Callers hold s.pauseMu.
func (s *Session) release() bool {
	s.mu.Lock()
	if s.resume == nil {
		s.mu.Unlock()
		return false
	}
	close(s.resume)
	s.resume = nil
	s.mu.Unlock()

	if p, ok := s.deps.Fetcher.(downloads.Pauser); ok {
		if err := p.Resume(); err != nil {
			logger.Pl.W("Could not continue downloads: %v", err)
		}
	}
	return true
}

// held blocks while the session is paused, returning false if it stopped meanwhile.
func (s *Session) held(ctx context.Context) bool {
	s.mu.Lock()
	resume := s.resume
	s.mu.Unlock()
	if resume == nil {
		return ctx.Err() == nil
	}
	select {
	case <-resume:
		return ctx.Err() == nil
	case <-ctx.Done():
		return false
	}
}

// run drives the session through resolution and the job queue.
func (s *Session) run(ctx context.Context) {
	s.setState(consts.SessionResolving)
	s.recordSession()
	s.logf(0, "Resolving %s", s.req.URL)

	p, err := s.deps.Resolver.Resolve(ctx, s.req.URL)
	if err != nil {
		if s.interrupted(ctx) {
			s.logf(0, "Resolution cancelled")
			s.finish(consts.SessionCancelled)
			return
		}
		s.setErr(err, false)
		s.logf(0, "Resolution failed: %v", err)
		s.finish(consts.SessionFinished)
		return
	}

	s.mu.Lock()
	s.playlist = p
	s.mu.Unlock()

	jobs := s.queue.EnqueueAll(p.Items, s.req.Quality, s.req.Format, s.req.Directory)
	s.logf(0, "Queued %d item(s) from %s", len(jobs), describe(p))
	for _, j := range jobs {
		s.publishJob(j)
	}

	if s.interrupted(ctx) {
		s.finish(consts.SessionCancelled)
		return
	}

	s.setState(consts.SessionRunning)
	s.saveConfig()
	s.recordSession()

	workers := min(s.opts.Workers, len(jobs))
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.work(ctx)
		}()
	}
	wg.Wait()

	if s.interrupted(ctx) && s.unsettled() {
		s.finish(consts.SessionCancelled)
		return
	}
	s.finish(consts.SessionFinished)
}

// unsettled reports whether a cancel cut any job short.
func (s *Session) unsettled() bool {
	c := s.queue.Counts()
	return c[consts.JobPending]+c[consts.JobRunning]+c[consts.JobCancelled] > 0
}

// work claims and runs jobs until the queue is drained or the session stops.
func (s *Session) work(ctx context.Context) {
	for s.held(ctx) {
		job, ok := s.queue.Claim()
		if !ok {
			return
		}
		s.publishJob(job)

		if err := s.runJob(ctx, job); err != nil {
			s.setErr(err, true)
			s.logf(job.ID, "Internal error: %v", err)
			s.stopRun()
			return
		}
	}
}

// runJob fetches one job until it reaches a terminal status.
//
// The returned error is an invariant breach, never a download failure.
func (s *Session) runJob(ctx context.Context, job models.Job) error {
	for {
		s.logf(job.ID, "Downloading %q (attempt %d/%d)", job.Label(), job.Attempts, s.opts.MaxAttempts)

		term, ok := s.consume(ctx, job)
		if !ok {
			term = models.ProgressEvent{
				JobID: job.ID,
				Phase: consts.PhaseErrored,
				Fault: models.FaultPermanent,
				Cause: "download ended without reporting a result",
			}
		}

		var err error
		switch {
		case term.Phase == consts.PhaseFinished:
			job, err = s.queue.Complete(job.ID, term.OutputPath)
			if err == nil {
				s.logf(job.ID, "Finished %q%s", job.Label(), pathSuffix(job.OutputPath))
			}

		case term.Fault == models.FaultCancelled || ctx.Err() != nil:
			job, err = s.queue.Mark(job.ID, consts.JobCancelled, downloads.CauseCancelled)
			if err == nil {
				s.logf(job.ID, "Cancelled %q", job.Label())
			}

		default:
			failure := term.Err()
			if failure.Transient() && job.Attempts < s.opts.MaxAttempts {
				s.logf(job.ID, "Attempt %d failed (%s), retrying", job.Attempts, failure.Cause)
				if !s.backoff(ctx) || !s.held(ctx) {
					job, err = s.queue.Mark(job.ID, consts.JobCancelled, downloads.CauseCancelled)
					if err == nil {
						s.logf(job.ID, "Cancelled %q", job.Label())
						s.publishJob(job)
					}
					return err
				}
				if job, err = s.queue.Retry(job.ID, failure); err != nil {
					return err
				}
				s.publishJob(job)
				continue
			}
			job, err = s.queue.Fail(job.ID, failure)
			if err == nil {
				s.logf(job.ID, "Failed %q after %d attempt(s): %s", job.Label(), job.Attempts, failure.Cause)
			}
		}

		if err != nil {
			return err
		}
		s.publishJob(job)
		return nil
	}
}

// consume forwards one attempt's events and returns its terminal event.
func (s *Session) consume(ctx context.Context, job models.Job) (models.ProgressEvent, bool) {
	var (
		term      models.ProgressEvent
		got       bool
		lastPhase consts.Phase
	)
	for ev := range s.deps.Fetcher.Fetch(ctx, job) {
		if got {
			logger.Pl.D(2, "Ignoring event after terminal event for job %d: %+v", job.ID, ev)
			continue
		}
		ev.JobID = job.ID
		if ev.At.IsZero() {
			ev.At = time.Now()
		}

		s.mu.Lock()
		s.lastEvents[job.ID] = ev
		s.mu.Unlock()
		s.bus.publish(Update{Kind: UpdateProgress, Event: ev})

		if ev.Phase == consts.PhaseMerging && ev.Phase != lastPhase {
			s.logf(job.ID, "Post-processing %q", job.Label())
		}
		lastPhase = ev.Phase

		if ev.IsTerminal() {
			term, got = ev, true
		}
	}
	return term, got
}

// backoff waits out the retry interval, returning false if the session stopped meanwhile.
func (s *Session) backoff(ctx context.Context) bool {
	if s.opts.RetryInterval <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(s.opts.RetryInterval)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// finish sweeps leftover jobs, settles the summary and closes the session.
func (s *Session) finish(state consts.SessionState) {
	for _, j := range s.queue.CancelPending(downloads.CauseCancelled) {
		s.publishJob(j)
	}

	s.mu.Lock()
	s.finishedAt = time.Now()
	s.summary = s.summarize(state)
	sum := s.summary
	s.mu.Unlock()

	s.logf(0, "Session %s: %d succeeded, %d failed, %d cancelled of %d",
		sum.Outcome, sum.Succeeded, sum.Failed, sum.Cancelled, sum.Total)
	s.setState(state)
	s.pauseMu.Lock()
	s.release()
	s.pauseMu.Unlock()
	s.recordSession()

	s.bus.close()
	s.stopRun()
	close(s.done)
}

// summarize tallies the queue. Callers hold s.mu.
func (s *Session) summarize(state consts.SessionState) models.Summary {
	c := s.queue.Counts()
	sum := models.Summary{
		SessionID: s.id,
		Succeeded: c[consts.JobSucceeded],
		Failed:    c[consts.JobFailed],
		Cancelled: c[consts.JobCancelled],
		Total:     s.queue.Len(),
	}
	if s.err != nil {
		sum.Err = s.err.Error()
	}

	var re *models.ResolutionError
	switch {
	case s.fatal:
		sum.Outcome = consts.OutcomeInternalError
	case errors.As(s.err, &re):
		sum.Outcome = consts.OutcomeResolutionFailed
	case state == consts.SessionCancelled:
		sum.Outcome = consts.OutcomeCancelled
	case sum.Total > 0 && sum.Failed == sum.Total:
		sum.Outcome = consts.OutcomeAllFailed
	case sum.Failed > 0:
		sum.Outcome = consts.OutcomePartial
	default:
		sum.Outcome = consts.OutcomeCompleted
	}
	return sum
}

// saveConfig stores the options used; failure only warns.
func (s *Session) saveConfig() {
	if s.deps.Config == nil {
		return
	}
	cfg := models.SessionConfig{
		DownloadPath:   s.req.Directory,
		DefaultQuality: s.req.Quality,
		DefaultFormat:  s.req.Format,
	}
	if err := s.deps.Config.Save(cfg); err != nil {
		s.logf(0, "Warning: could not save settings: %v", err)
		logger.Pl.W("Could not save settings: %v", err)
	}
}

func (s *Session) stopRun() {
	s.mu.Lock()
	stop := s.stop
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// interrupted reports whether the session was cancelled, either by Cancel or
// by its parent context. An internal error is not a cancellation.
func (s *Session) interrupted(ctx context.Context) bool {
	if ctx.Err() != nil && !s.isFatal() {
		s.cancelled.Store(true)
	}
	return s.cancelled.Load()
}

func (s *Session) setErr(err error, fatal bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
		s.fatal = fatal
	}
}

func (s *Session) isFatal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatal
}

func (s *Session) setState(st consts.SessionState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.bus.publish(Update{Kind: UpdateState, State: st})
	logger.Pl.D(1, "Session %s is now %s", s.id, st)
}

func (s *Session) logf(jobID int, format string, args ...any) {
	e := s.log.Append(jobID, format, args...)
	if jobID > 0 {
		logger.Pl.I("[job %d] %s", jobID, e.Message)
	} else {
		logger.Pl.I("%s", e.Message)
	}
	s.bus.publish(Update{Kind: UpdateLog, Log: e})
}

func (s *Session) publishJob(j models.Job) {
	s.bus.publish(Update{Kind: UpdateJob, Job: j})
	if s.deps.Recorder != nil {
		s.deps.Recorder.RecordJob(s.id, j)
	}
}

func (s *Session) recordSession() {
	if s.deps.Recorder == nil {
		return
	}
	s.deps.Recorder.RecordSession(s.Record())
}

func describe(p *models.Playlist) string {
	if p.IsPlaylist && p.Title != "" {
		return fmt.Sprintf("playlist %q", p.Title)
	}
	if p.Source != "" {
		return p.Source
	}
	return p.URL
}

func pathSuffix(p string) string {
	if p == "" {
		return ""
	}
	return " -> " + p
}

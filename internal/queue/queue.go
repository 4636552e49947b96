// Package queue holds the ordered job list of a download session.
package queue

import (
	"fmt"
	"sync"
	"time"

	"tubegrab/internal/domain/consts"
	"tubegrab/internal/models"
)

// JobQueue is an ordered, append-only list of jobs.
//
// Jobs are never removed; only their status changes, and only along
// Pending -> Running -> {Succeeded, Failed, Cancelled} or Pending -> Cancelled.
type JobQueue struct {
	mu   sync.Mutex
	jobs []*models.Job
	now  func() time.Time
}

// New returns an empty queue.
func New() *JobQueue {
	return &JobQueue{now: time.Now}
}

// EnqueueAll appends one Pending job per item, in order, and returns copies of them.
func (q *JobQueue) EnqueueAll(items []models.Item, quality models.Quality, format models.Format, dir string) []models.Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.Job, 0, len(items))
	for _, it := range items {
		j := &models.Job{
			ID:        len(q.jobs) + 1,
			ItemID:    it.ID,
			Title:     it.Title,
			URL:       it.URL,
			Directory: dir,
			Quality:   quality,
			Format:    format,
			Status:    consts.JobPending,
			UpdatedAt: q.now(),
		}
		q.jobs = append(q.jobs, j)
		out = append(out, *j)
	}
	return out
}

// NextPending returns the earliest Pending job.
func (q *JobQueue) NextPending() (models.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, j := range q.jobs {
		if j.Status == consts.JobPending {
			return *j, true
		}
	}
	return models.Job{}, false
}

// Claim moves the earliest Pending job to Running and starts its first attempt.
func (q *JobQueue) Claim() (models.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, j := range q.jobs {
		if j.Status == consts.JobPending {
			j.Status = consts.JobRunning
			j.Attempts = 1
			j.UpdatedAt = q.now()
			return *j, true
		}
	}
	return models.Job{}, false
}

// Retry records a failed attempt of a Running job and starts the next one.
func (q *JobQueue) Retry(id int, failure *models.FetchError) (models.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	j, err := q.lookup(id)
	if err != nil {
		return models.Job{}, err
	}
	if j.Status != consts.JobRunning {
		return *j, &models.InvalidTransitionError{JobID: id, From: j.Status, To: consts.JobRunning}
	}
	if failure != nil {
		j.LastError = failure.Cause
		j.Fault = failure.Kind
	}
	j.Attempts++
	j.UpdatedAt = q.now()
	return *j, nil
}

// Mark moves a job to status, recording cause as its last error when non-empty.
func (q *JobQueue) Mark(id int, status consts.JobStatus, cause string) (models.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	j, err := q.lookup(id)
	if err != nil {
		return models.Job{}, err
	}
	if !allowed(j.Status, status) {
		return *j, &models.InvalidTransitionError{JobID: id, From: j.Status, To: status}
	}
	j.Status = status
	if cause != "" {
		j.LastError = cause
	}
	j.UpdatedAt = q.now()
	return *j, nil
}

// Complete marks a Running job Succeeded with the file it produced.
func (q *JobQueue) Complete(id int, outputPath string) (models.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	j, err := q.lookup(id)
	if err != nil {
		return models.Job{}, err
	}
	if !allowed(j.Status, consts.JobSucceeded) {
		return *j, &models.InvalidTransitionError{JobID: id, From: j.Status, To: consts.JobSucceeded}
	}
	j.Status = consts.JobSucceeded
	j.OutputPath = outputPath
	j.LastError = ""
	j.Fault = models.FaultNone
	j.UpdatedAt = q.now()
	return *j, nil
}

// Fail marks a Running job Failed with the failure that ended it.
func (q *JobQueue) Fail(id int, failure *models.FetchError) (models.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	j, err := q.lookup(id)
	if err != nil {
		return models.Job{}, err
	}
	if !allowed(j.Status, consts.JobFailed) {
		return *j, &models.InvalidTransitionError{JobID: id, From: j.Status, To: consts.JobFailed}
	}
	j.Status = consts.JobFailed
	if failure != nil {
		j.LastError = failure.Cause
		j.Fault = failure.Kind
	}
	j.UpdatedAt = q.now()
	return *j, nil
}

// CancelPending marks every Pending job Cancelled and returns them.
func (q *JobQueue) CancelPending(cause string) []models.Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []models.Job
	for _, j := range q.jobs {
		if j.Status == consts.JobPending {
			j.Status = consts.JobCancelled
			j.LastError = cause
			j.Fault = models.FaultCancelled
			j.UpdatedAt = q.now()
			out = append(out, *j)
		}
	}
	return out
}

// Get returns a copy of the job with id.
func (q *JobQueue) Get(id int) (models.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	j, err := q.lookup(id)
	if err != nil {
		return models.Job{}, err
	}
	return *j, nil
}

// Snapshot returns copies of all jobs in order.
func (q *JobQueue) Snapshot() []models.Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.Job, len(q.jobs))
	for i, j := range q.jobs {
		out[i] = *j
	}
	return out
}

// Len returns the number of jobs.
func (q *JobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Counts returns the number of jobs in each status.
func (q *JobQueue) Counts() map[consts.JobStatus]int {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make(map[consts.JobStatus]int, 5)
	for _, j := range q.jobs {
		out[j.Status]++
	}
	return out
}

func (q *JobQueue) lookup(id int) (*models.Job, error) {
	if id < 1 || id > len(q.jobs) {
		return nil, fmt.Errorf("%w: %d", models.ErrUnknownJob, id)
	}
	return q.jobs[id-1], nil
}

// allowed reports whether a job may move from one status to another.
func allowed(from, to consts.JobStatus) bool {
	switch from {
	case consts.JobPending:
		return to == consts.JobRunning || to == consts.JobCancelled
	case consts.JobRunning:
		return to.IsTerminal()
	}
	return false
}

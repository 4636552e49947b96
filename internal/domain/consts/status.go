package consts

// JobStatus is the lifecycle state of a single download job.
type JobStatus string

// Job statuses.
const (
	JobPending   JobStatus = "Pending"
	JobRunning   JobStatus = "Running"
	JobSucceeded JobStatus = "Succeeded"
	JobFailed    JobStatus = "Failed"
	JobCancelled JobStatus = "Cancelled"
)

// IsTerminal reports whether no further transition is allowed out of s.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobSucceeded, JobFailed, JobCancelled:
		return true
	}
	return false
}

// Phase is the stage a job reports in a progress event.
type Phase string

// Progress phases.
const (
	PhaseResolving   Phase = "Resolving"
	PhaseDownloading Phase = "Downloading"
	PhaseMerging     Phase = "Merging"
	PhaseFinished    Phase = "Finished"
	PhaseErrored     Phase = "Errored"
)

// SessionState is the lifecycle state of a download session.
type SessionState string

// Session states.
const (
	SessionIdle      SessionState = "Idle"
	SessionResolving SessionState = "Resolving"
	SessionRunning   SessionState = "Running"
	SessionFinished  SessionState = "Finished"
	SessionCancelled SessionState = "Cancelled"
)

// IsDone reports whether the session has stopped doing work.
func (s SessionState) IsDone() bool {
	return s == SessionFinished || s == SessionCancelled
}

// Outcome classifies how a finished session went.
type Outcome string

// Session outcomes.
const (
	OutcomeCompleted        Outcome = "completed"
	OutcomePartial          Outcome = "partial"
	OutcomeAllFailed        Outcome = "all_failed"
	OutcomeCancelled        Outcome = "cancelled"
	OutcomeResolutionFailed Outcome = "resolution_failed"
	OutcomeInternalError    Outcome = "internal_error"
)

package models

import (
	"errors"
	"fmt"

	"tubegrab/internal/domain/consts"
)

// Sentinel errors.
var (
	ErrInvalidQuality = errors.New("invalid quality")
	ErrInvalidFormat  = errors.New("invalid format")
	ErrSessionStarted = errors.New("session already started")
	ErrNotRunning     = errors.New("session is not running")
	ErrUnknownJob     = errors.New("unknown job")
)

// FaultKind classifies a fetch failure.
type FaultKind string

// Fault kinds.
const (
	FaultNone      FaultKind = ""
	FaultTransient FaultKind = "transient"
	FaultPermanent FaultKind = "permanent"
	FaultCancelled FaultKind = "cancelled"
)

// ResolutionError is returned when a URL cannot be expanded into items.
type ResolutionError struct {
	URL    string
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not resolve %q: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("could not resolve %q: %s", e.URL, e.Reason)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// FetchError describes a failed fetch attempt.
type FetchError struct {
	JobID int
	Kind  FaultKind
	Cause string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("job %d: %s failure: %s", e.JobID, e.Kind, e.Cause)
}

// Transient reports whether retrying could plausibly succeed.
func (e *FetchError) Transient() bool {
	return e.Kind == FaultTransient
}

// InvalidTransitionError is returned for a job status change the lifecycle forbids.
type InvalidTransitionError struct {
	JobID int
	From  consts.JobStatus
	To    consts.JobStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("job %d: invalid transition %s -> %s", e.JobID, e.From, e.To)
}

package models

import (
	"time"

	"tubegrab/internal/domain/consts"
)

// Indeterminate is the Fraction of an event with no known total.
const Indeterminate = -1.0

// ProgressEvent is one progress report for a job.
type ProgressEvent struct {
	JobID      int
	Phase      consts.Phase
	BytesDone  int64
	BytesTotal int64 // 0 when unknown
	Fraction   float64
	SpeedBps   float64
	ETA        time.Duration
	Cause      string
	Fault      FaultKind
	OutputPath string
	Message    string
	At         time.Time
}

// IsTerminal reports whether e ends its job's event stream.
func (e ProgressEvent) IsTerminal() bool {
	return e.Phase == consts.PhaseFinished || e.Phase == consts.PhaseErrored
}

// IsIndeterminate reports whether e carries no usable fraction.
func (e ProgressEvent) IsIndeterminate() bool {
	return e.Fraction < 0
}

// Err returns the failure carried by an Errored event, or nil.
func (e ProgressEvent) Err() *FetchError {
	if e.Phase != consts.PhaseErrored {
		return nil
	}
	kind := e.Fault
	if kind == FaultNone {
		kind = FaultPermanent
	}
	return &FetchError{JobID: e.JobID, Kind: kind, Cause: e.Cause}
}

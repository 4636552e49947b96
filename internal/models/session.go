package models

import (
	"time"

	"tubegrab/internal/domain/consts"
)

// Summary is the tally of a finished session.
type Summary struct {
	SessionID string
	Succeeded int
	Failed    int
	Cancelled int
	Total     int
	Outcome   consts.Outcome
	Err       string
}

// LogEntry is one line of the session log.
type LogEntry struct {
	At      time.Time
	JobID   int // 0 for session-level lines
	Message string
}

// SessionRecord is a session as stored in the history database.
type SessionRecord struct {
	ID         string
	URL        string
	Title      string
	Quality    string
	Format     string
	Directory  string
	State      consts.SessionState
	Outcome    consts.Outcome
	Succeeded  int
	Failed     int
	Cancelled  int
	Total      int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
	Jobs       []JobRecord
}

// JobRecord is a job as stored in the history database.
type JobRecord struct {
	SessionID  string
	JobID      int
	ItemID     string
	Title      string
	URL        string
	Status     consts.JobStatus
	Attempts   int
	Error      string
	OutputPath string
	UpdatedAt  time.Time
}

// NewJobRecord converts a job into its history form.
func NewJobRecord(sessionID string, j Job) JobRecord {
	return JobRecord{
		SessionID:  sessionID,
		JobID:      j.ID,
		ItemID:     j.ItemID,
		Title:      j.Title,
		URL:        j.URL,
		Status:     j.Status,
		Attempts:   j.Attempts,
		Error:      j.LastError,
		OutputPath: j.OutputPath,
		UpdatedAt:  j.UpdatedAt,
	}
}

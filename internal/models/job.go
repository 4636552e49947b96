// Package models holds the data types shared across tubegrab.
package models

import (
	"time"

	"tubegrab/internal/domain/consts"
)

// Job is one playlist item's download task.
type Job struct {
	ID         int
	ItemID     string
	Title      string
	URL        string
	Directory  string
	Quality    Quality
	Format     Format
	Status     consts.JobStatus
	Attempts   int
	LastError  string
	Fault      FaultKind
	OutputPath string
	UpdatedAt  time.Time
}

// EffectiveQuality returns the quality the job downloads at.
func (j Job) EffectiveQuality() Quality {
	return EffectiveQuality(j.Quality, j.Format)
}

// IsTerminal reports whether the job has finished one way or another.
func (j Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// Label returns the best human-readable name for the job.
func (j Job) Label() string {
	if j.Title != "" {
		return j.Title
	}
	if j.ItemID != "" {
		return j.ItemID
	}
	return j.URL
}

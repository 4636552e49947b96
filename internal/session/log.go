package session

import (
	"fmt"
	"sync"
	"time"

	"tubegrab/internal/models"
)

// Log is an append-only, timestamped session log safe for concurrent writers.
type Log struct {
	mu      sync.Mutex
	entries []models.LogEntry
	now     func() time.Time
}

func newLog() *Log {
	return &Log{now: time.Now}
}

// Append adds a line and returns it.
func (l *Log) Append(jobID int, format string, args ...any) models.LogEntry {
	e := models.LogEntry{JobID: jobID, Message: fmt.Sprintf(format, args...)}

	l.mu.Lock()
	defer l.mu.Unlock()
	e.At = l.now()
	if n := len(l.entries); n > 0 && e.At.Before(l.entries[n-1].At) {
		e.At = l.entries[n-1].At
	}
	l.entries = append(l.entries, e)
	return e
}

// Entries returns a copy of the log.
func (l *Log) Entries() []models.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.LogEntry(nil), l.entries...)
}

// Len returns the number of lines.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

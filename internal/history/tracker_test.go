package history

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"tubegrab/internal/database"
	"tubegrab/internal/domain/consts"
	"tubegrab/internal/models"
	"tubegrab/internal/repo"
)

// TestTrackerWritesOnStop checks queued session and job snapshots reach the database by Stop.
func TestTrackerWritesOnStop(t *testing.T) {
	t.Parallel()
	d, err := database.InitDB(filepath.Join(t.TempDir(), "tubegrab.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer d.Close()
	store := repo.GetHistoryStore(d.DB)

	tr := NewTracker(store)
	tr.Start()

	rec := models.SessionRecord{
		ID:        "s1",
		URL:       "https://example.com/watch?v=abc",
		Quality:   "best",
		Format:    "mp4",
		Directory: t.TempDir(),
		State:     consts.SessionResolving,
		StartedAt: time.Now(),
	}
	tr.RecordSession(rec)
	job := models.Job{ID: 1, ItemID: "abc", Title: "Clip", Status: consts.JobPending}
	tr.RecordJob("s1", job)
	job.Status = consts.JobSucceeded
	job.Attempts = 1
	tr.RecordJob("s1", job)
	rec.State = consts.SessionFinished
	rec.Outcome = consts.OutcomeCompleted
	rec.Succeeded, rec.Total = 1, 1
	tr.RecordSession(rec)

	tr.Stop()
	tr.Stop()

	got, err := store.GetSession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.State != consts.SessionFinished || got.Outcome != consts.OutcomeCompleted {
		t.Fatalf("unexpected session %+v", got)
	}
	if len(got.Jobs) != 1 || got.Jobs[0].Status != consts.JobSucceeded {
		t.Fatalf("unexpected jobs %+v", got.Jobs)
	}

	// Late updates are dropped rather than blocking.
	tr.RecordJob("s1", job)
}

type flakyStore struct {
	mu       sync.Mutex
	failures int
	calls    int
	sessions []models.SessionRecord
}

func (f *flakyStore) GetDB() *sql.DB { return nil }

func (f *flakyStore) UpsertSession(_ context.Context, rec models.SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errors.New("database is locked")
	}
	f.sessions = append(f.sessions, rec)
	return nil
}

func (f *flakyStore) UpsertJobs(context.Context, []models.JobRecord) error { return nil }

func (f *flakyStore) ListSessions(context.Context, int) ([]models.SessionRecord, error) {
	return nil, nil
}

func (f *flakyStore) GetSession(context.Context, string) (models.SessionRecord, error) {
	return models.SessionRecord{}, nil
}

func (f *flakyStore) Jobs(context.Context, string) ([]models.JobRecord, error) { return nil, nil }

func (f *flakyStore) DeleteSession(context.Context, string) error { return nil }

// TestTrackerRetries checks a write that fails transiently is retried until it lands.
func TestTrackerRetries(t *testing.T) {
	t.Parallel()
	store := &flakyStore{failures: 2}
	tr := NewTracker(store)
	tr.Start()
	tr.RecordSession(models.SessionRecord{ID: "s1"})
	tr.Stop()

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.calls != 3 {
		t.Fatalf("calls = %d, want 3", store.calls)
	}
	if len(store.sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(store.sessions))
	}
}

// TestTrackerGivesUp checks a persistently failing write is abandoned after three attempts.
func TestTrackerGivesUp(t *testing.T) {
	t.Parallel()
	store := &flakyStore{failures: 10}
	tr := NewTracker(store)
	tr.Start()
	tr.RecordSession(models.SessionRecord{ID: "s1"})
	tr.Stop()

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.calls != 3 || len(store.sessions) != 0 {
		t.Fatalf("calls = %d, sessions = %d", store.calls, len(store.sessions))
	}
}

// Package contracts defines interfaces that decouple the application layer from storage implementations.
package contracts

import (
	"context"
	"database/sql"

	"tubegrab/internal/models"
)

// HistoryStore allows access to session history repo methods.
type HistoryStore interface {
	GetDB() *sql.DB

	// Write operations.
	UpsertSession(ctx context.Context, rec models.SessionRecord) error
	UpsertJobs(ctx context.Context, jobs []models.JobRecord) error

	// Read operations.
	ListSessions(ctx context.Context, limit int) ([]models.SessionRecord, error)
	GetSession(ctx context.Context, id string) (models.SessionRecord, error)
	Jobs(ctx context.Context, sessionID string) ([]models.JobRecord, error)

	// Delete operations.
	DeleteSession(ctx context.Context, id string) error
}

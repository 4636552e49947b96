// Package repo holds the database access layer.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tubegrab/internal/domain/consts"
	"tubegrab/internal/domain/logger"
	"tubegrab/internal/models"

	"github.com/Masterminds/squirrel"
)

// ErrSessionNotFound is returned when no session has the requested ID.
var ErrSessionNotFound = errors.New("session not found")

// HistoryStore persists session and job history.
type HistoryStore struct {
	DB *sql.DB
}

// GetHistoryStore returns a history store instance with injected database.
func GetHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{
		DB: db,
	}
}

// GetDB returns the database.
func (hs *HistoryStore) GetDB() *sql.DB {
	return hs.DB
}

// UpsertSession inserts the session row or refreshes its mutable columns.
func (hs *HistoryStore) UpsertSession(ctx context.Context, rec models.SessionRecord) error {
	query := squirrel.Insert(consts.DBSessions).
		Columns(
			consts.QSessID,
			consts.QSessURL,
			consts.QSessTitle,
			consts.QSessQuality,
			consts.QSessFormat,
			consts.QSessDirectory,
			consts.QSessState,
			consts.QSessOutcome,
			consts.QSessSucceeded,
			consts.QSessFailed,
			consts.QSessCancelled,
			consts.QSessTotal,
			consts.QSessError,
			consts.QSessStartedAt,
			consts.QSessFinishedAt,
		).
		Values(
			rec.ID,
			rec.URL,
			rec.Title,
			rec.Quality,
			rec.Format,
			rec.Directory,
			string(rec.State),
			string(rec.Outcome),
			rec.Succeeded,
			rec.Failed,
			rec.Cancelled,
			rec.Total,
			rec.Error,
			nullTime(rec.StartedAt),
			nullTime(rec.FinishedAt),
		).
		Suffix(`ON CONFLICT(` + consts.QSessID + `) DO UPDATE SET ` +
			consts.QSessTitle + ` = excluded.` + consts.QSessTitle + `, ` +
			consts.QSessState + ` = excluded.` + consts.QSessState + `, ` +
			consts.QSessOutcome + ` = excluded.` + consts.QSessOutcome + `, ` +
			consts.QSessSucceeded + ` = excluded.` + consts.QSessSucceeded + `, ` +
			consts.QSessFailed + ` = excluded.` + consts.QSessFailed + `, ` +
			consts.QSessCancelled + ` = excluded.` + consts.QSessCancelled + `, ` +
			consts.QSessTotal + ` = excluded.` + consts.QSessTotal + `, ` +
			consts.QSessError + ` = excluded.` + consts.QSessError + `, ` +
			consts.QSessFinishedAt + ` = excluded.` + consts.QSessFinishedAt).
		RunWith(hs.DB)

	if _, err := query.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to upsert session %q: %w", rec.ID, err)
	}
	return nil
}

// UpsertJobs writes a batch of job rows in one transaction.
func (hs *HistoryStore) UpsertJobs(ctx context.Context, jobs []models.JobRecord) error {
	if len(jobs) == 0 {
		return nil
	}
	var (
		committed bool
	)

	tx, err := hs.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if !committed {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				logger.Pl.E("Error rolling back job history for %d jobs: %v", len(jobs), rollbackErr)
			}
		}
	}()

	for _, j := range jobs {
		query := squirrel.Insert(consts.DBJobs).
			Columns(
				consts.QJobSessionID,
				consts.QJobID,
				consts.QJobItemID,
				consts.QJobTitle,
				consts.QJobURL,
				consts.QJobStatus,
				consts.QJobAttempts,
				consts.QJobError,
				consts.QJobOutputPath,
				consts.QJobUpdatedAt,
			).
			Values(
				j.SessionID,
				j.JobID,
				j.ItemID,
				j.Title,
				j.URL,
				string(j.Status),
				j.Attempts,
				j.Error,
				j.OutputPath,
				nullTime(j.UpdatedAt),
			).
			Suffix(`ON CONFLICT(` + consts.QJobSessionID + `, ` + consts.QJobID + `) DO UPDATE SET ` +
				consts.QJobStatus + ` = excluded.` + consts.QJobStatus + `, ` +
				consts.QJobAttempts + ` = excluded.` + consts.QJobAttempts + `, ` +
				consts.QJobError + ` = excluded.` + consts.QJobError + `, ` +
				consts.QJobOutputPath + ` = excluded.` + consts.QJobOutputPath + `, ` +
				consts.QJobUpdatedAt + ` = excluded.` + consts.QJobUpdatedAt).
			RunWith(tx)

		if _, err := query.ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to upsert job %d of session %q: %w", j.JobID, j.SessionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	logger.Pl.D(3, "Wrote %d job history rows", len(jobs))
	return nil
}

// ListSessions returns the most recent sessions, newest first, without jobs.
//
// A limit of zero or less returns every session.
func (hs *HistoryStore) ListSessions(ctx context.Context, limit int) ([]models.SessionRecord, error) {
	query := sessionSelect().
		OrderBy(consts.QSessStartedAt + " DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := query.RunWith(hs.DB).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []models.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating sessions: %w", err)
	}
	return out, nil
}

// GetSession returns one session with its jobs.
func (hs *HistoryStore) GetSession(ctx context.Context, id string) (models.SessionRecord, error) {
	row := sessionSelect().
		Where(squirrel.Eq{consts.QSessID: id}).
		RunWith(hs.DB).
		QueryRowContext(ctx)

	rec, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SessionRecord{}, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
		}
		return models.SessionRecord{}, err
	}

	if rec.Jobs, err = hs.Jobs(ctx, id); err != nil {
		return models.SessionRecord{}, err
	}
	return rec, nil
}

// Jobs returns the jobs of a session in enqueue order.
func (hs *HistoryStore) Jobs(ctx context.Context, sessionID string) ([]models.JobRecord, error) {
	rows, err := squirrel.
		Select(
			consts.QJobSessionID,
			consts.QJobID,
			consts.QJobItemID,
			consts.QJobTitle,
			consts.QJobURL,
			consts.QJobStatus,
			consts.QJobAttempts,
			consts.QJobError,
			consts.QJobOutputPath,
			consts.QJobUpdatedAt,
		).
		From(consts.DBJobs).
		Where(squirrel.Eq{consts.QJobSessionID: sessionID}).
		OrderBy(consts.QJobID).
		RunWith(hs.DB).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs for session %q: %w", sessionID, err)
	}
	defer rows.Close()

	var out []models.JobRecord
	for rows.Next() {
		var (
			j                          models.JobRecord
			status                     string
			itemID, title, url, errMsg sql.NullString
			outputPath                 sql.NullString
			updatedAt                  sql.NullTime
		)
		if err := rows.Scan(
			&j.SessionID,
			&j.JobID,
			&itemID,
			&title,
			&url,
			&status,
			&j.Attempts,
			&errMsg,
			&outputPath,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		j.ItemID = itemID.String
		j.Title = title.String
		j.URL = url.String
		j.Status = consts.JobStatus(status)
		j.Error = errMsg.String
		j.OutputPath = outputPath.String
		if updatedAt.Valid {
			j.UpdatedAt = updatedAt.Time
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating jobs: %w", err)
	}
	return out, nil
}

// DeleteSession removes a session and, by cascade, its jobs.
func (hs *HistoryStore) DeleteSession(ctx context.Context, id string) error {
	res, err := squirrel.Delete(consts.DBSessions).
		Where(squirrel.Eq{consts.QSessID: id}).
		RunWith(hs.DB).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete session %q: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	return nil
}

func sessionSelect() squirrel.SelectBuilder {
	return squirrel.
		Select(
			consts.QSessID,
			consts.QSessURL,
			consts.QSessTitle,
			consts.QSessQuality,
			consts.QSessFormat,
			consts.QSessDirectory,
			consts.QSessState,
			consts.QSessOutcome,
			consts.QSessSucceeded,
			consts.QSessFailed,
			consts.QSessCancelled,
			consts.QSessTotal,
			consts.QSessError,
			consts.QSessStartedAt,
			consts.QSessFinishedAt,
		).
		From(consts.DBSessions)
}

// scanSession reads one session row from a *sql.Row or *sql.Rows.
func scanSession(row squirrel.RowScanner) (models.SessionRecord, error) {
	var (
		rec                    models.SessionRecord
		state                  string
		title, outcome, errMsg sql.NullString
		startedAt, finishedAt  sql.NullTime
	)
	if err := row.Scan(
		&rec.ID,
		&rec.URL,
		&title,
		&rec.Quality,
		&rec.Format,
		&rec.Directory,
		&state,
		&outcome,
		&rec.Succeeded,
		&rec.Failed,
		&rec.Cancelled,
		&rec.Total,
		&errMsg,
		&startedAt,
		&finishedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("failed to scan session row: %w", err)
	}
	rec.Title = title.String
	rec.State = consts.SessionState(state)
	rec.Outcome = consts.Outcome(outcome.String)
	rec.Error = errMsg.String
	if startedAt.Valid {
		rec.StartedAt = startedAt.Time
	}
	if finishedAt.Valid {
		rec.FinishedAt = finishedAt.Time
	}
	return rec, nil
}

// nullTime stores zero times as NULL.
func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

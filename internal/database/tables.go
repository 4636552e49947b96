package database

import (
	"database/sql"
	"fmt"
)

func initSessionsTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS sessions (
        id TEXT PRIMARY KEY,
        url TEXT NOT NULL,
        title TEXT,
        quality TEXT NOT NULL,
        format TEXT NOT NULL,
        directory TEXT NOT NULL,
        state TEXT NOT NULL CHECK(state IN ('Idle', 'Resolving', 'Running', 'Finished', 'Cancelled')),
        outcome TEXT,
        succeeded INTEGER NOT NULL DEFAULT 0,
        failed INTEGER NOT NULL DEFAULT 0,
        cancelled INTEGER NOT NULL DEFAULT 0,
        total INTEGER NOT NULL DEFAULT 0,
        error_message TEXT,
        started_at TIMESTAMP,
        finished_at TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

func initJobsTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS jobs (
        session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
        job_id INTEGER NOT NULL,
        item_id TEXT,
        title TEXT,
        url TEXT,
        status TEXT NOT NULL CHECK(status IN ('Pending', 'Running', 'Succeeded', 'Failed', 'Cancelled')),
        attempts INTEGER NOT NULL DEFAULT 0,
        error_message TEXT,
        output_path TEXT,
        updated_at TIMESTAMP,
        PRIMARY KEY (session_id, job_id)
    );
    CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create jobs table: %w", err)
	}
	return nil
}

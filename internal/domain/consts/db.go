package consts

// Tables
const (
	DBSessions = "sessions"
	DBJobs     = "jobs"
)

// Sessions
const (
	QSessID         = "id"
	QSessURL        = "url"
	QSessTitle      = "title"
	QSessQuality    = "quality"
	QSessFormat     = "format"
	QSessDirectory  = "directory"
	QSessState      = "state"
	QSessOutcome    = "outcome"
	QSessSucceeded  = "succeeded"
	QSessFailed     = "failed"
	QSessCancelled  = "cancelled"
	QSessTotal      = "total"
	QSessError      = "error_message"
	QSessStartedAt  = "started_at"
	QSessFinishedAt = "finished_at"
)

// Jobs
const (
	QJobSessionID  = "session_id"
	QJobID         = "job_id"
	QJobItemID     = "item_id"
	QJobTitle      = "title"
	QJobURL        = "url"
	QJobStatus     = "status"
	QJobAttempts   = "attempts"
	QJobError      = "error_message"
	QJobOutputPath = "output_path"
	QJobUpdatedAt  = "updated_at"
)

// Package keys holds flag, environment and document key names.
package keys

// Terminal keys
const (
	URL          string = "url"
	DownloadDir  string = "dir"
	Quality      string = "quality"
	Format       string = "format"
	Concurrency  string = "concurrency"
	MaxAttempts  string = "max-attempts"
	RetryDelay   string = "retry-delay"
	PlaylistEnd  string = "playlist-end"
	Template     string = "output-template"
	YtdlpPath    string = "ytdlp-path"
	CookieSource string = "cookies-from-browser"
	CookieExport string = "browser-cookies"
	DebugLevel   string = "debug"
	NoHistory    string = "no-history"
	JSONOutput   string = "json"
	HistoryLimit string = "limit"
)

// Persisted settings document
const (
	DocDownloadPath   string = "download_path"
	DocDefaultQuality string = "default_quality"
	DocDefaultFormat  string = "default_format"
)

// Environment
const (
	EnvPrefix string = "TUBEGRAB"
)

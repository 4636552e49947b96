package models

// SessionConfig holds the persisted user preferences.
type SessionConfig struct {
	DownloadPath   string
	DefaultQuality Quality
	DefaultFormat  Format
}

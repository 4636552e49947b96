package models

import "time"

// Item is one downloadable entry of a resolved URL.
type Item struct {
	ID         string
	Title      string
	URL        string
	Duration   string
	UploadDate time.Time
}

// Playlist is the result of resolving a URL.
type Playlist struct {
	ID         string
	Title      string
	URL        string
	Source     string
	IsPlaylist bool
	Items      []Item
}

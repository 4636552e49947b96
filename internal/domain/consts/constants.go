// Package consts holds program-wide constants.
package consts

// Worker limits
const (
	DefaultWorkers = 1
	MaxWorkers     = 4
)

// Event buffering
const (
	DefaultSubscriberBuffer = 64
	TrackerBuffer           = 100
	MaxStderrBytes          = 8192
)

// Playlist expansion
const (
	DefaultPlaylistEnd = 500
)

// Recognised capped resolutions, highest first.
var CapHeights = []int{1080, 720, 480, 360}

package consts

import "time"

// Retry configuration
const (
	DefaultMaxAttempts = 3
	RetryInterval      = 2 * time.Second
	RetryBackoff       = 100 * time.Millisecond
)

// Subprocess control
const (
	CancelGracePeriod = 5 * time.Second
	ProbeTimeout      = 2 * time.Minute
)

// Storage
const (
	DatabaseTimeout = 5 * time.Second
)

//go:build !unix

package cfg

// pausable is a session that can be put on hold.
type pausable interface {
	Pause() error
	Resume() error
	Paused() bool
}

// watchPauseToggle is a no-op where SIGUSR1 does not exist.
func watchPauseToggle(pausable) func() {
	return func() {}
}

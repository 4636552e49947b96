//go:build unix

package cfg

import (
	"os"
	"os/signal"
	"syscall"

	"tubegrab/internal/domain/logger"
)

// pausable is a session that can be put on hold.
type pausable interface {
	Pause() error
	Resume() error
	Paused() bool
}

// watchPauseToggle pauses or resumes s on every SIGUSR1 until the returned
// function is called.
func watchPauseToggle(s pausable) func() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGUSR1)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sig:
				toggle := s.Pause
				if s.Paused() {
					toggle = s.Resume
				}
				if err := toggle(); err != nil {
					logger.Pl.W("Could not toggle pause: %v", err)
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(sig)
		close(done)
	}
}

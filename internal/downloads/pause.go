package downloads

import (
	"errors"
	"os/exec"

	"tubegrab/internal/domain/logger"
)

// Pause suspends every running yt-dlp process group. Downloads started
// before Resume are suspended as soon as they launch.
func (y *YTDLP) Pause() error {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.paused = true

	var errs []error
	for cmd := range y.running {
		if err := pauseProcess(cmd); err != nil {
			errs = append(errs, err)
		}
	}
	logger.Pl.D(1, "Suspended %d download(s)", len(y.running))
	return errors.Join(errs...)
}

// Resume continues every suspended yt-dlp process group.
func (y *YTDLP) Resume() error {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.paused = false

	var errs []error
	for cmd := range y.running {
		if err := resumeProcess(cmd); err != nil {
			errs = append(errs, err)
		}
	}
	logger.Pl.D(1, "Resumed %d download(s)", len(y.running))
	return errors.Join(errs...)
}

// track registers a started command, suspending it if the backend is paused.
func (y *YTDLP) track(cmd *exec.Cmd) {
	y.mu.Lock()
	defer y.mu.Unlock()
	y.running[cmd] = struct{}{}
	if y.paused {
		if err := pauseProcess(cmd); err != nil {
			logger.Pl.W("Could not suspend PID %d: %v", cmd.Process.Pid, err)
		}
	}
}

// untrack forgets cmd. It must run before cmd is reaped.
func (y *YTDLP) untrack(cmd *exec.Cmd) {
	y.mu.Lock()
	defer y.mu.Unlock()
	delete(y.running, cmd)
}

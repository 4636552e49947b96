//go:build !unix

package downloads

import (
	"errors"
	"os"
	"os/exec"
)

var errPauseUnsupported = errors.New("suspending downloads is not supported on this platform")

func setProcessGroup(*exec.Cmd) {}

func interruptProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}

func killProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

func pauseProcess(*exec.Cmd) error { return errPauseUnsupported }

func resumeProcess(*exec.Cmd) error { return errPauseUnsupported }

//go:build unix

package downloads

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the command in its own process group so children (ffmpeg) are signalled too.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// interruptProcess asks the process group to stop.
func interruptProcess(cmd *exec.Cmd) error {
	return signalGroup(cmd, syscall.SIGINT)
}

// killProcess force-terminates the process group.
func killProcess(cmd *exec.Cmd) error {
	return signalGroup(cmd, syscall.SIGKILL)
}

// pauseProcess suspends the process group.
func pauseProcess(cmd *exec.Cmd) error {
	return signalGroup(cmd, syscall.SIGSTOP)
}

// resumeProcess continues a suspended process group.
func resumeProcess(cmd *exec.Cmd) error {
	return signalGroup(cmd, syscall.SIGCONT)
}

func signalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-cmd.Process.Pid, sig)
}

//go:build unix

package rustcomp

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcessGroup places the child in its own process group so a timeout
// can kill rustc's entire subprocess tree rather than only its immediate
// pid (rustc may itself fork helper processes for codegen backends).
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup sends SIGKILL to the negative pid, i.e. the whole
// process group created by setProcessGroup.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}

	_ = unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
}

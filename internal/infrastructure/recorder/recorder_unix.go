//go:build !windows

package recorder

import (
	"os/exec"
	"syscall"
)

// configureDetached puts codegen in its own process group so terminate can
// signal the whole tree.
func configureDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminate signals the codegen process group, best effort. The process
// may already be gone when the user closed the browser window.
func terminate(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGTERM)
	_ = syscall.Kill(pid, syscall.SIGTERM)
}

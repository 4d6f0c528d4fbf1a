//go:build windows

package recorder

import (
	"os"
	"os/exec"
	"strconv"
	"syscall"
)

// configureDetached starts codegen in its own process group so it is not
// torn down with this console.
func configureDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

// terminate closes the codegen process tree via taskkill, best effort. The
// process may already be gone when the user closed the browser window.
func terminate(pid int) {
	if pid <= 0 {
		return
	}
	if err := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run(); err != nil {
		if proc, perr := os.FindProcess(pid); perr == nil {
			_ = proc.Kill()
		}
	}
}

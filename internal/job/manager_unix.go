//go:build unix

package job

import (
	"fmt"
	"syscall"
)

// procAttrs puts the spawned command in its own process group so that
// task_stop can signal the whole tree at once.
func procAttrs() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// signalGroup sends sig to the process group led by pid. ESRCH (no such
// process/group) is treated as success: the process had already exited.
func signalGroup(pid int, sig syscall.Signal) error {
	err := syscall.Kill(-pid, sig)
	if err != nil {
		if err == syscall.ESRCH {
			return nil
		}
		return fmt.Errorf("signal process group %d: %w", pid, err)
	}
	return nil
}

// processAlive reports whether pid still exists, probing with signal 0
// rather than relying on signalGroup's ESRCH-suppressing semantics (which
// make "delivered" and "already gone" indistinguishable).
func processAlive(pid int) bool {
	return syscall.Kill(pid, 0) != syscall.ESRCH
}

//go:build windows

package job

import (
	"errors"
	"syscall"
)

// procAttrs puts the spawned command in its own process group, mirroring
// the Unix build's Setpgid so the job retains a signalable group leader.
func procAttrs() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

// signalGroup is not implemented on this platform: graceful escalation
// (SIGTERM then SIGKILL to a process group) has no direct Windows
// equivalent here, so task_stop surfaces a clear error instead of
// pretending to succeed.
func signalGroup(pid int, sig syscall.Signal) error {
	return errors.New("graceful stop escalation is not supported on this platform")
}

// processAlive is never consulted on this platform: signalGroup above
// always errors before Stop's escalation loop would need a liveness probe.
func processAlive(pid int) bool {
	return false
}

//go:build unix

package harness

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

func exitStatus(ps *os.ProcessState) ExitStatus {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		name := unix.SignalName(ws.Signal())
		if name == "" {
			name = ws.Signal().String()
		}
		return ExitStatus{Code: -1, Signal: name}
	}
	return ExitStatus{Exited: ps.Exited(), Code: ps.ExitCode()}
}

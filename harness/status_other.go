//go:build !unix

package harness

import "os"

func exitStatus(ps *os.ProcessState) ExitStatus {
	return ExitStatus{Exited: ps.Exited(), Code: ps.ExitCode()}
}

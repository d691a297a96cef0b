//go:build !windows

package mpv

import "syscall"

func terminate(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

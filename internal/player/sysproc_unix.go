//go:build !windows

package player

import "syscall"

// Detach the background player from our process group so terminal signals
// aimed at ytm do not reach it.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}

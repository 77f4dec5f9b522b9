// Package ioctl wraps the ioctl system call for the framebuffer output.
package ioctl

import (
	"fmt"
	"reflect"
	"syscall"
)

// Command is an ioctl request number.
type Command uintptr

// Do issues an ioctl with a pointer argument. The pointed-to value must be a
// fixed-layout struct matching the kernel ABI.
func Do(fd uintptr, command Command, ptr interface{}) error {
	var p uintptr
	if ptr != nil {
		p = reflect.ValueOf(ptr).Pointer()
	}
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, uintptr(command), p); errno != 0 {
		return fmt.Errorf("ioctl %#04x failed: %v", uintptr(command), errno)
	}
	return nil
}

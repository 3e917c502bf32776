package joystick

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// JSIOCG* ioctl request codes, from linux/joystick.h.
const (
	jsiocgAxes    = 0x80016a11
	jsiocgButtons = 0x80016a12
	jsiocgVersion = 0x80046a01

	// jsiocgNameBase is JSIOCGNAME with a zero-length buffer; the
	// buffer length is encoded into bits 16..29 of the request.
	jsiocgNameBase = 0x80006a13

	nameBufLen = 128
)

func jsiocgName(length int) uintptr {
	return uintptr(jsiocgNameBase + (length << 16))
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

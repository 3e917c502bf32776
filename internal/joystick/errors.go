package joystick

import "errors"

// ErrClosed is returned when reading from a device after Close.
var ErrClosed = errors.New("joystick: device closed")

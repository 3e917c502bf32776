// Package joystick reads the Linux kernel joystick interface
// (/dev/input/jsN).
//
// The kernel delivers fixed 8-byte little-endian records. Device opens
// the node non-blocking, so ReadEvent returns immediately whether or
// not an event is pending; the ingestion loop calls it once per tick
// and treats "nothing pending" as the normal case.
//
// On open the driver replays the current state of every axis and button
// as synthetic events with the init bit set in the type byte. Kind
// masks that bit off so callers dispatch replayed and live events the
// same way.
//
// Identity (name, axis and button counts, driver version) is queried
// best-effort over ioctl at open time and is informational only; a node
// that rejects the ioctls still works as an event source.
package joystick

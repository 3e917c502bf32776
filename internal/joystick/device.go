package joystick

import (
	"bytes"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Info describes the device as reported by the driver at open time.
type Info struct {
	Name    string
	Axes    int
	Buttons int
	Version uint32
}

// Device is an open joystick node. It is not safe for concurrent use;
// the ingestion loop owns it for its whole lifetime.
type Device struct {
	fd   int
	path string
	info Info
	buf  [eventSize]byte
}

// Open opens the joystick node read-only and non-blocking and queries
// its identity. The returned Device must be closed by the caller.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	return &Device{
		fd:   fd,
		path: path,
		info: queryInfo(fd),
	}, nil
}

// ReadEvent performs one non-blocking read.
//
// ok is false when no event is pending, which is the normal case on a
// quiet tick. A non-nil error means the read itself failed; callers
// treat that as "no event" and keep ticking.
func (d *Device) ReadEvent() (Event, bool, error) {
	if d.fd < 0 {
		return Event{}, false, ErrClosed
	}

	n, err := unix.Read(d.fd, d.buf[:])
	if err != nil {
		if err == unix.EAGAIN {
			return Event{}, false, nil
		}
		return Event{}, false, fmt.Errorf("reading %s: %w", d.path, err)
	}
	if n < eventSize {
		return Event{}, false, nil
	}

	return decodeEvent(d.buf[:]), true, nil
}

// Close releases the device node. Closing twice is harmless.
func (d *Device) Close() error {
	if d.fd < 0 {
		return nil
	}

	err := unix.Close(d.fd)
	d.fd = -1
	if err != nil {
		return fmt.Errorf("closing %s: %w", d.path, err)
	}
	return nil
}

// Path returns the device node path this Device was opened from.
func (d *Device) Path() string {
	return d.path
}

// Info returns the identity captured at open time.
func (d *Device) Info() Info {
	return d.info
}

// queryInfo is best-effort: nodes that reject the ioctls (or a plain
// file standing in for one in tests) yield zero counts and a
// placeholder name.
func queryInfo(fd int) Info {
	info := Info{Name: "unknown"}

	var count uint8
	if err := ioctl(fd, jsiocgAxes, unsafe.Pointer(&count)); err == nil {
		info.Axes = int(count)
	}
	if err := ioctl(fd, jsiocgButtons, unsafe.Pointer(&count)); err == nil {
		info.Buttons = int(count)
	}

	var version uint32
	if err := ioctl(fd, jsiocgVersion, unsafe.Pointer(&version)); err == nil {
		info.Version = version
	}

	var name [nameBufLen]byte
	if err := ioctl(fd, jsiocgName(len(name)), unsafe.Pointer(&name[0])); err == nil {
		if n := bytes.IndexByte(name[:], 0); n > 0 {
			info.Name = string(name[:n])
		}
	}

	return info
}

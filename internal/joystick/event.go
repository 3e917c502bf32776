package joystick

import "encoding/binary"

// Kernel joystick event types, from linux/joystick.h.
const (
	// EventButton reports a button press or release.
	EventButton uint8 = 0x01

	// EventAxis reports an axis position change.
	EventAxis uint8 = 0x02

	// EventInit is ORed into the type byte on the synthetic events the
	// driver emits at open to replay current device state.
	EventInit uint8 = 0x80
)

// eventSize is the fixed wire size of one kernel record.
const eventSize = 8

// Event is one record from the kernel joystick interface.
type Event struct {
	// Time is the event timestamp in milliseconds.
	Time uint32

	// Value is the axis position or button state (0 or 1).
	Value int16

	// Type is the raw type byte, possibly carrying EventInit.
	Type uint8

	// Number is the axis or button index.
	Number uint8
}

// Kind returns the event type with the synthetic-init bit masked off.
func (e Event) Kind() uint8 {
	return e.Type &^ EventInit
}

func decodeEvent(buf []byte) Event {
	return Event{
		Time:   binary.LittleEndian.Uint32(buf[0:4]),
		Value:  int16(binary.LittleEndian.Uint16(buf[4:6])),
		Type:   buf[6],
		Number: buf[7],
	}
}

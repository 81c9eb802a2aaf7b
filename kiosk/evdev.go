package kiosk

import (
	"encoding/binary"

	"github.com/plus3/blockfall/input"
)

// Linux input-event-codes.h
const (
	evKey = 0x01

	keyEsc        = 1
	keyZ          = 44
	keyX          = 45
	keyLeftShift  = 42
	keyRightShift = 54
	keySpace      = 57
	keyF4         = 62
	keyUp         = 103
	keyLeft       = 105
	keyRight      = 106
	keyDown       = 108

	valueRelease = 0
	valuePress   = 1
)

var evdevKeys = map[uint16]input.KeyCode{
	keyZ:          input.KeyZ,
	keyX:          input.KeyX,
	keyLeftShift:  input.KeyShift,
	keyRightShift: input.KeyShift,
	keySpace:      input.KeySpace,
	keyUp:         input.KeyArrowUp,
	keyLeft:       input.KeyArrowLeft,
	keyRight:      input.KeyArrowRight,
	keyDown:       input.KeyArrowDown,
}

// keyEvent is one decoded EV_KEY record.
type keyEvent struct {
	code  uint16
	value int32
}

// decodeKeyEvents parses a buffer of input_event records. input_event is a
// timeval followed by u16 type, u16 code and s32 value; tvSize is the size
// of timeval on the running architecture. Non-key records are skipped.
func decodeKeyEvents(buf []byte, tvSize int, dst []keyEvent) []keyEvent {
	eventSize := tvSize + 8
	for off := 0; off+eventSize <= len(buf); off += eventSize {
		rec := buf[off : off+eventSize]
		typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
		if typ != evKey {
			continue
		}
		dst = append(dst, keyEvent{
			code:  binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4]),
			value: int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8])),
		})
	}
	return dst
}

// translate turns a key record into a controller event. Autorepeat records
// are dropped; the controller counts held frames itself.
func translate(ev keyEvent) (input.Event, bool) {
	code, ok := evdevKeys[ev.code]
	if !ok {
		return input.Event{}, false
	}
	switch ev.value {
	case valuePress:
		return input.Event{Kind: input.KeyDown, Key: code}, true
	case valueRelease:
		return input.Event{Kind: input.KeyUp, Key: code}, true
	default:
		return input.Event{}, false
	}
}

// isQuit reports whether ev asks the kiosk to exit.
func isQuit(ev keyEvent) bool {
	return ev.value == valuePress && (ev.code == keyEsc || ev.code == keyF4)
}

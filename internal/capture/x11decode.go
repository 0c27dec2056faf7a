package capture

import (
	"encoding/binary"

	"inputcap/internal/event"
)

// The RECORD extension delivers raw core-protocol xEvent records: 32-byte
// fixed-layout structures. Only the offsets below are consumed; everything
// else in the record is ignored.
//
//	byte 0      event type (low 7 bits; high bit marks synthetic events)
//	byte 1      detail: keycode for key events, button number for pointer
//	bytes 24-25 signed 16-bit X root coordinate (little endian)
//	bytes 26-27 signed 16-bit Y root coordinate
//	bytes 28-29 modifier/button state bitmask (key and pointer events)
const (
	xEventSize = 32

	xEventTypeOff = 0
	xDetailOff    = 1
	xRootXOff     = 24
	xRootYOff     = 26
	xStateOff     = 28
)

// Core protocol event codes covered by the recording range.
const (
	xKeyPress      = 2
	xKeyRelease    = 3
	xButtonPress   = 4
	xButtonRelease = 5
	xMotionNotify  = 6
)

// Modifier bits of the xEvent state field.
const (
	xShiftMask   = 1 << 0
	xControlMask = 1 << 2
	xMod1Mask    = 1 << 3 // Alt
	xMod4Mask    = 1 << 6 // Super/Meta
)

// xDecoder converts raw xEvent records into normalized events. lookup
// resolves a keycode to its primary keysym; it is supplied by the record
// source from the server's keyboard mapping.
type xDecoder struct {
	lookup func(keycode byte) uint32
}

func xStateModifiers(state uint16) event.ModMask {
	var m event.ModMask
	if state&xShiftMask != 0 {
		m |= event.MaskShift
	}
	if state&xControlMask != 0 {
		m |= event.MaskControl
	}
	if state&xMod1Mask != 0 {
		m |= event.MaskAlt
	}
	if state&xMod4Mask != 0 {
		m |= event.MaskMeta
	}
	return m
}

// decode parses one raw record. It returns false for records it does not
// recognize; those are dropped whole rather than forwarded half-filled.
func (d *xDecoder) decode(raw []byte) (event.Event, bool) {
	if len(raw) < xEventSize {
		return event.Event{}, false
	}

	typ := raw[xEventTypeOff] & 0x7f
	detail := raw[xDetailOff]
	x := int16(binary.LittleEndian.Uint16(raw[xRootXOff:]))
	y := int16(binary.LittleEndian.Uint16(raw[xRootYOff:]))
	state := binary.LittleEndian.Uint16(raw[xStateOff:])

	switch typ {
	case xKeyPress, xKeyRelease:
		t := event.KeyDown
		if typ == xKeyRelease {
			t = event.KeyUp
		}
		name := keysymName(d.lookup(detail))
		return event.NewKey(t, uint32(detail), name, xStateModifiers(state)), true

	case xButtonPress, xButtonRelease:
		// Buttons 4-7 are the X11 scroll encodings; they become scroll
		// events with unit deltas and no button field.
		switch detail {
		case 4:
			return event.NewMouseScroll(0, 1), true
		case 5:
			return event.NewMouseScroll(0, -1), true
		case 6:
			return event.NewMouseScroll(1, 0), true
		case 7:
			return event.NewMouseScroll(-1, 0), true
		}
		t := event.MouseDown
		if typ == xButtonRelease {
			t = event.MouseUp
		}
		return event.NewMouseButton(t, xButtonName(detail), float64(x), float64(y)), true

	case xMotionNotify:
		return event.NewMouseMove(float64(x), float64(y)), true
	}

	return event.Event{}, false
}

func xButtonName(button byte) event.Button {
	switch button {
	case 1:
		return event.ButtonLeft
	case 2:
		return event.ButtonMiddle
	case 3:
		return event.ButtonRight
	}
	return event.ButtonOther
}

package capture

import (
	"strconv"

	"inputcap/internal/event"
)

// Window messages reported by the low-level hooks.
const (
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmMouseWheel  = 0x020A
	wmMouseHWheel = 0x020E
)

// wheelDelta is the native encoding of one scroll detent; deltas scale by
// it so one detent is 1.0 and high-resolution devices report fractions.
const wheelDelta = 120

// Virtual-key codes for the named keys.
const (
	vkBack    = 0x08
	vkTab     = 0x09
	vkReturn  = 0x0D
	vkShift   = 0x10
	vkControl = 0x11
	vkMenu    = 0x12
	vkEscape  = 0x1B
	vkSpace   = 0x20
	vkPrior   = 0x21
	vkNext    = 0x22
	vkEnd     = 0x23
	vkHome    = 0x24
	vkLeft    = 0x25
	vkUp      = 0x26
	vkRight   = 0x27
	vkDown    = 0x28
	vkDelete  = 0x2E
	vkLWin    = 0x5B
	vkRWin    = 0x5C
	vkF1      = 0x70
	vkF12     = 0x7B
	vkLShift  = 0xA0
	vkRShift  = 0xA1
	vkLCtrl   = 0xA2
	vkRCtrl   = 0xA3
	vkLMenu   = 0xA4
	vkRMenu   = 0xA5
)

// vkeyName maps a Windows virtual-key code to the canonical key name.
// Letters normalize to lowercase so both platforms report printable keys
// identically; unknown codes get the deterministic "Key<code>" fallback.
func vkeyName(vk uint32) string {
	if vk >= '0' && vk <= '9' {
		return string(rune(vk))
	}
	if vk >= 'A' && vk <= 'Z' {
		return string(rune(vk + 32))
	}
	if vk >= vkF1 && vk <= vkF12 {
		return "F" + strconv.Itoa(int(vk-vkF1)+1)
	}
	switch vk {
	case vkReturn:
		return "Return"
	case vkTab:
		return "Tab"
	case vkBack:
		return "Backspace"
	case vkEscape:
		return "Escape"
	case vkDelete:
		return "Delete"
	case vkHome:
		return "Home"
	case vkEnd:
		return "End"
	case vkPrior:
		return "PageUp"
	case vkNext:
		return "PageDown"
	case vkLeft:
		return "Left"
	case vkRight:
		return "Right"
	case vkUp:
		return "Up"
	case vkDown:
		return "Down"
	case vkSpace:
		return "Space"
	case vkShift, vkLShift, vkRShift:
		return "Shift"
	case vkControl, vkLCtrl, vkRCtrl:
		return "Control"
	case vkMenu, vkLMenu, vkRMenu:
		return "Alt"
	case vkLWin, vkRWin:
		return "Meta"
	}
	return "Key" + strconv.FormatUint(uint64(vk), 10)
}

// decodeKeyboard turns a low-level keyboard hook record into a normalized
// event. The hook record carries no shift/lock state in-band, so the
// modifier set is queried live by the caller and passed in. Unknown
// messages are dropped.
func decodeKeyboard(msg uint32, vk uint32, mods event.ModMask) (event.Event, bool) {
	switch msg {
	case wmKeyDown, wmSysKeyDown:
		return event.NewKey(event.KeyDown, vk, vkeyName(vk), mods), true
	case wmKeyUp, wmSysKeyUp:
		return event.NewKey(event.KeyUp, vk, vkeyName(vk), mods), true
	}
	return event.Event{}, false
}

// decodeMouse turns a low-level mouse hook record into a normalized event.
// Wheel deltas are normalized to 1.0 per detent: vertical wheel on deltaY,
// horizontal on deltaX. Unknown messages are dropped whole.
func decodeMouse(msg uint32, x, y int32, mouseData uint32) (event.Event, bool) {
	switch msg {
	case wmMouseMove:
		return event.NewMouseMove(float64(x), float64(y)), true
	case wmLButtonDown:
		return event.NewMouseButton(event.MouseDown, event.ButtonLeft, float64(x), float64(y)), true
	case wmLButtonUp:
		return event.NewMouseButton(event.MouseUp, event.ButtonLeft, float64(x), float64(y)), true
	case wmRButtonDown:
		return event.NewMouseButton(event.MouseDown, event.ButtonRight, float64(x), float64(y)), true
	case wmRButtonUp:
		return event.NewMouseButton(event.MouseUp, event.ButtonRight, float64(x), float64(y)), true
	case wmMButtonDown:
		return event.NewMouseButton(event.MouseDown, event.ButtonMiddle, float64(x), float64(y)), true
	case wmMButtonUp:
		return event.NewMouseButton(event.MouseUp, event.ButtonMiddle, float64(x), float64(y)), true
	case wmMouseWheel:
		return event.NewMouseScroll(0, wheelNotches(mouseData)), true
	case wmMouseHWheel:
		return event.NewMouseScroll(wheelNotches(mouseData), 0), true
	}
	return event.Event{}, false
}

// wheelNotches extracts the signed wheel movement from the high word of
// mouseData and scales it to notches.
func wheelNotches(mouseData uint32) float64 {
	return float64(int16(mouseData>>16)) / wheelDelta
}

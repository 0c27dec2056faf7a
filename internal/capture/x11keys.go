package capture

import "strconv"

// X11 keysym values for non-printable keys (from X11/keysymdef.h).
const (
	xkBackSpace = 0xff08
	xkTab       = 0xff09
	xkReturn    = 0xff0d
	xkEscape    = 0xff1b
	xkHome      = 0xff50
	xkLeft      = 0xff51
	xkUp        = 0xff52
	xkRight     = 0xff53
	xkDown      = 0xff54
	xkPageUp    = 0xff55
	xkPageDown  = 0xff56
	xkEnd       = 0xff57
	xkF1        = 0xffbe
	xkF12       = 0xffc9
	xkShiftL    = 0xffe1
	xkShiftR    = 0xffe2
	xkControlL  = 0xffe3
	xkControlR  = 0xffe4
	xkAltL      = 0xffe9
	xkAltR      = 0xffea
	xkSuperL    = 0xffeb
	xkSuperR    = 0xffec
	xkDelete    = 0xffff
)

// keysymName maps an X11 keysym to the canonical key name: a single
// printable character for printable keys, a symbolic name for the known
// non-printable keys, and a deterministic "Key<code>" fallback otherwise.
func keysymName(sym uint32) string {
	if sym >= 0x20 && sym <= 0x7e {
		return string(rune(sym))
	}
	if sym >= xkF1 && sym <= xkF12 {
		return "F" + strconv.Itoa(int(sym-xkF1)+1)
	}
	switch sym {
	case xkReturn:
		return "Return"
	case xkTab:
		return "Tab"
	case xkBackSpace:
		return "Backspace"
	case xkEscape:
		return "Escape"
	case xkDelete:
		return "Delete"
	case xkHome:
		return "Home"
	case xkEnd:
		return "End"
	case xkPageUp:
		return "PageUp"
	case xkPageDown:
		return "PageDown"
	case xkLeft:
		return "Left"
	case xkRight:
		return "Right"
	case xkUp:
		return "Up"
	case xkDown:
		return "Down"
	case xkShiftL, xkShiftR:
		return "Shift"
	case xkControlL, xkControlR:
		return "Control"
	case xkAltL, xkAltR:
		return "Alt"
	case xkSuperL, xkSuperR:
		return "Meta"
	}
	return "Key" + strconv.FormatUint(uint64(sym), 10)
}

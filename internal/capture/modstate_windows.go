//go:build windows

package capture

import "inputcap/internal/event"

// queryModifiers samples live modifier-key state via GetAsyncKeyState.
// The low-level keyboard hook record carries no shift/lock state in-band,
// so the set is read at the moment of each key event.
func queryModifiers() event.ModMask {
	const pressed = 0x8000

	down := func(vk uintptr) bool {
		ret, _, _ := procGetAsyncKeyState.Call(vk)
		return uint16(ret)&pressed != 0
	}

	var m event.ModMask
	if down(vkShift) {
		m |= event.MaskShift
	}
	if down(vkControl) {
		m |= event.MaskControl
	}
	if down(vkMenu) {
		m |= event.MaskAlt
	}
	if down(vkLWin) || down(vkRWin) {
		m |= event.MaskMeta
	}
	return m
}

//go:build windows

package winctl

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	gwlStyle           = ^uintptr(15) // GWL_STYLE (-16)
	wsOverlappedWindow = 0x00CF0000
	swpFrameChanged    = 0x0020
	swpShowWindow      = 0x0040
	smCxScreen         = 0
	smCyScreen         = 1
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procGetWindowLong       = user32.NewProc("GetWindowLongW")
	procSetWindowLong       = user32.NewProc("SetWindowLongW")
	procSetWindowPos        = user32.NewProc("SetWindowPos")
	procGetWindowRect       = user32.NewProc("GetWindowRect")
	procGetSystemMetrics    = user32.NewProc("GetSystemMetrics")
)

type rect struct {
	Left, Top, Right, Bottom int32
}

type winControl struct {
	hwnd      uintptr
	prevStyle uintptr
	prevRect  rect
	saved     bool
}

// New returns the user32-backed window control.
func New() (Control, error) {
	return &winControl{}, nil
}

func screenMetrics() (int32, int32) {
	cx, _, _ := procGetSystemMetrics.Call(smCxScreen)
	cy, _, _ := procGetSystemMetrics.Call(smCyScreen)
	return int32(cx), int32(cy)
}

func (c *winControl) EnterFullscreen() error {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return ErrUnavailable
	}

	style, _, _ := procGetWindowLong.Call(hwnd, gwlStyle)
	var r rect
	procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))

	c.hwnd = hwnd
	c.prevStyle = style
	c.prevRect = r
	c.saved = true

	cx, cy := screenMetrics()
	procSetWindowLong.Call(hwnd, gwlStyle, style&^wsOverlappedWindow)
	ret, _, err := procSetWindowPos.Call(hwnd, 0, 0, 0,
		uintptr(cx), uintptr(cy), swpFrameChanged|swpShowWindow)
	if ret == 0 {
		return fmt.Errorf("SetWindowPos: %v", err)
	}
	return nil
}

func (c *winControl) ExitFullscreen() error {
	if !c.saved || c.hwnd == 0 {
		return nil
	}

	procSetWindowLong.Call(c.hwnd, gwlStyle, c.prevStyle)
	r := c.prevRect
	ret, _, err := procSetWindowPos.Call(c.hwnd, 0,
		uintptr(r.Left), uintptr(r.Top),
		uintptr(r.Right-r.Left), uintptr(r.Bottom-r.Top),
		swpFrameChanged|swpShowWindow)
	c.saved = false
	if ret == 0 {
		return fmt.Errorf("SetWindowPos: %v", err)
	}
	return nil
}

func (c *winControl) IsFullscreen() (bool, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return false, ErrUnavailable
	}
	var r rect
	ret, _, err := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return false, fmt.Errorf("GetWindowRect: %v", err)
	}
	cx, cy := screenMetrics()
	covers := r.Left <= 0 && r.Top <= 0 && r.Right >= cx && r.Bottom >= cy
	return covers, nil
}

func (c *winControl) ScreenSize() (Size, error) {
	cx, cy := screenMetrics()
	return Size{Width: float64(cx), Height: float64(cy)}, nil
}

func (c *winControl) Close() error { return nil }

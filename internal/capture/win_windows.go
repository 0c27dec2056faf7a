//go:build windows

package capture

import (
	"fmt"
	"log"
	"runtime"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"inputcap/internal/osutils"
	"inputcap/internal/sink"
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14
	wmQuit       = 0x0012
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessage     = user32.NewProc("DispatchMessageW")
	procGetAsyncKeyState    = user32.NewProc("GetAsyncKeyState")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")

	kernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procGetModuleHandle    = kernel32.NewProc("GetModuleHandleW")
	procGetCurrentThreadId = kernel32.NewProc("GetCurrentThreadId")
)

type KBDLLHOOKSTRUCT struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type MSLLHOOKSTRUCT struct {
	Point       struct{ X, Y int32 }
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type MSG struct {
	Hwnd    syscall.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// activeSource is the process-wide cell the raw hook callbacks read. It is
// swapped atomically so a callback racing with teardown observes either a
// fully valid source or nil; on nil the event is forwarded down the chain
// untouched.
var activeSource atomic.Pointer[hookSource]

// Callback pointers are created once; NewCallback allocations are never
// released.
var (
	keyboardProcPtr = syscall.NewCallback(lowLevelKeyboardProc)
	mouseProcPtr    = syscall.NewCallback(lowLevelMouseProc)
)

// hookSource captures input through WH_KEYBOARD_LL and WH_MOUSE_LL hooks.
// The hooks live on a dedicated locked OS thread that pumps a message
// queue; the OS invokes the callbacks synchronously on that thread within
// a small time budget, so decode and push happen inline with no blocking
// and no queueing.
type hookSource struct {
	snk     *sink.Sink
	swallow bool

	threadID uintptr
	done     chan struct{}
}

// NewSource returns the Windows low-level hook capture source.
func NewSource(s *sink.Sink, opts Options) Source {
	return &hookSource{snk: s, swallow: opts.SwallowEvents}
}

func (h *hookSource) Start() error {
	if h.done != nil {
		return nil
	}
	installed := make(chan error, 1)
	h.done = make(chan struct{})
	go h.run(installed)
	if err := <-installed; err != nil {
		<-h.done
		h.done = nil
		return err
	}
	return nil
}

func (h *hookSource) run(installed chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(h.done)

	hMod, _, _ := procGetModuleHandle.Call(0)

	// Keyboard first, then mouse; a mouse failure rolls the keyboard hook
	// back so a failed start holds nothing.
	kb, _, err := procSetWindowsHookEx.Call(whKeyboardLL, keyboardProcPtr, hMod, 0)
	if kb == 0 {
		installed <- fmt.Errorf("install keyboard hook: %v", err)
		return
	}
	ms, _, err := procSetWindowsHookEx.Call(whMouseLL, mouseProcPtr, hMod, 0)
	if ms == 0 {
		procUnhookWindowsHookEx.Call(kb)
		installed <- fmt.Errorf("install mouse hook: %v", err)
		return
	}

	tid, _, _ := procGetCurrentThreadId.Call()
	h.threadID = tid
	activeSource.Store(h)
	installed <- nil

	var msg MSG
	for {
		ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		if int32(ret) <= 0 {
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessage.Call(uintptr(unsafe.Pointer(&msg)))
	}

	procUnhookWindowsHookEx.Call(ms)
	procUnhookWindowsHookEx.Call(kb)
	log.Printf("capture: hook thread exited")
}

func (h *hookSource) Stop() {
	if h.done == nil {
		return
	}
	// Clear the shared cell before unhooking: an invocation already in
	// flight on the input thread sees no source and forwards down-chain
	// instead of touching a dying object.
	activeSource.CompareAndSwap(h, nil)
	procPostThreadMessage.Call(h.threadID, wmQuit, 0, 0)
	<-h.done
	h.done = nil
	h.threadID = 0
}

func (h *hookSource) CheckCapability() Capability {
	return Capability{
		Available: true,
		Details: map[string]bool{
			"hooks":    true,
			"elevated": osutils.IsAdmin(),
		},
	}
}

// RequestCapability always succeeds: hooks need no explicit grant.
func (h *hookSource) RequestCapability() bool { return true }

func lowLevelKeyboardProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	src := activeSource.Load()
	if src == nil || int32(nCode) < 0 {
		ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
		return ret
	}
	kb := (*KBDLLHOOKSTRUCT)(unsafe.Pointer(lParam))
	if ev, ok := decodeKeyboard(uint32(wParam), kb.VkCode, queryModifiers()); ok {
		src.snk.Send(ev)
		if src.swallow {
			// Negative return consumes the keystroke before any
			// application sees it.
			return ^uintptr(0)
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

func lowLevelMouseProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	src := activeSource.Load()
	if src == nil || int32(nCode) < 0 {
		ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
		return ret
	}
	ms := (*MSLLHOOKSTRUCT)(unsafe.Pointer(lParam))
	if ev, ok := decodeMouse(uint32(wParam), ms.Point.X, ms.Point.Y, ms.MouseData); ok {
		src.snk.Send(ev)
		if src.swallow {
			// Any non-zero return stops the event from reaching the
			// rest of the hook chain.
			return 1
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

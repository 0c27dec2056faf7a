// Package event defines the normalized, platform-independent input event
// schema delivered to consumers.
package event

import "time"

// Type identifies the kind of input occurrence.
type Type string

const (
	KeyDown     Type = "keyDown"
	KeyUp       Type = "keyUp"
	MouseDown   Type = "mouseDown"
	MouseUp     Type = "mouseUp"
	MouseMove   Type = "mouseMove"
	MouseScroll Type = "mouseScroll"
)

// Button identifies a pointer button on mouseDown/mouseUp events.
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonMiddle Button = "middle"
	ButtonRight  Button = "right"
	ButtonOther  Button = "other"
)

// Modifier is a modifier key active at event time.
type Modifier string

const (
	ModShift   Modifier = "shift"
	ModControl Modifier = "control"
	ModAlt     Modifier = "alt"
	ModMeta    Modifier = "meta"
)

// ModMask is a bitmask of active modifiers. Building the modifier list
// through a mask keeps the set duplicate-free and the order fixed.
type ModMask uint8

const (
	MaskShift ModMask = 1 << iota
	MaskControl
	MaskAlt
	MaskMeta
)

// Has reports whether all bits of m2 are set in m.
func (m ModMask) Has(m2 ModMask) bool { return m&m2 == m2 }

// Names expands the mask into modifier names. The result is never nil.
func (m ModMask) Names() []Modifier {
	names := make([]Modifier, 0, 4)
	if m.Has(MaskShift) {
		names = append(names, ModShift)
	}
	if m.Has(MaskControl) {
		names = append(names, ModControl)
	}
	if m.Has(MaskAlt) {
		names = append(names, ModAlt)
	}
	if m.Has(MaskMeta) {
		names = append(names, ModMeta)
	}
	return names
}

// Event is one normalized input occurrence. Exactly the fields mandated by
// Type are populated; all optional fields marshal only when set. Events are
// immutable once constructed.
type Event struct {
	// Timestamp is milliseconds since epoch, captured at decode time.
	// OS event time bases differ across platforms, so the wall clock at
	// decode is the only comparable stamp.
	Timestamp int64 `json:"timestamp"`

	Type Type `json:"type"`

	// KeyCode and Key are set for keyDown/keyUp only.
	KeyCode   uint32     `json:"keyCode,omitempty"`
	Key       string     `json:"key,omitempty"`
	Modifiers []Modifier `json:"modifiers,omitempty"`

	// Button is set for mouseDown/mouseUp only.
	Button Button `json:"button,omitempty"`

	// X and Y are screen coordinates, set for mouseDown/mouseUp/mouseMove.
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`

	// DeltaX and DeltaY are set for mouseScroll only, normalized so one
	// detent has magnitude 1.0.
	DeltaX *float64 `json:"deltaX,omitempty"`
	DeltaY *float64 `json:"deltaY,omitempty"`
}

func now() int64 { return time.Now().UnixMilli() }

func f(v float64) *float64 { return &v }

// NewKey builds a keyDown or keyUp event.
func NewKey(t Type, keyCode uint32, key string, mods ModMask) Event {
	return Event{
		Timestamp: now(),
		Type:      t,
		KeyCode:   keyCode,
		Key:       key,
		Modifiers: mods.Names(),
	}
}

// NewMouseButton builds a mouseDown or mouseUp event at screen coordinates.
func NewMouseButton(t Type, b Button, x, y float64) Event {
	return Event{
		Timestamp: now(),
		Type:      t,
		Button:    b,
		X:         f(x),
		Y:         f(y),
	}
}

// NewMouseMove builds a mouseMove event at screen coordinates.
func NewMouseMove(x, y float64) Event {
	return Event{
		Timestamp: now(),
		Type:      MouseMove,
		X:         f(x),
		Y:         f(y),
	}
}

// NewMouseScroll builds a mouseScroll event. Scroll events never carry a
// button, even when the platform reports them as button presses.
func NewMouseScroll(deltaX, deltaY float64) Event {
	return Event{
		Timestamp: now(),
		Type:      MouseScroll,
		DeltaX:    f(deltaX),
		DeltaY:    f(deltaY),
	}
}

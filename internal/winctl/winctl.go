// Package winctl provides window and display control: fullscreen toggling
// for the foreground window and primary screen geometry. It is independent
// of input capture state.
package winctl

import "errors"

// ErrUnavailable is returned when no display server or window is reachable.
var ErrUnavailable = errors.New("window control unavailable on this platform")

// Size is the primary screen size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Control manipulates the focused window and queries display geometry.
type Control interface {
	EnterFullscreen() error
	ExitFullscreen() error
	IsFullscreen() (bool, error)
	ScreenSize() (Size, error)
	Close() error
}

type unavailableControl struct{}

// Unavailable returns a control whose operations all report
// ErrUnavailable. Used when no display server can be reached.
func Unavailable() Control { return unavailableControl{} }

func (unavailableControl) EnterFullscreen() error      { return ErrUnavailable }
func (unavailableControl) ExitFullscreen() error       { return ErrUnavailable }
func (unavailableControl) IsFullscreen() (bool, error) { return false, ErrUnavailable }
func (unavailableControl) ScreenSize() (Size, error)   { return Size{}, ErrUnavailable }
func (unavailableControl) Close() error                { return nil }

//go:build linux

package winctl

import (
	"encoding/binary"
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// EWMH _NET_WM_STATE actions.
const (
	wmStateRemove = 0
	wmStateAdd    = 1
)

type x11Control struct {
	conn   *xgb.Conn
	root   xproto.Window
	screen *xproto.ScreenInfo
	atoms  map[string]xproto.Atom
}

// New connects to the X server and resolves the EWMH atoms used for
// fullscreen control.
func New() (Control, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect x server: %w", err)
	}
	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	c := &x11Control{
		conn:   conn,
		root:   screen.Root,
		screen: screen,
		atoms:  make(map[string]xproto.Atom),
	}
	for _, name := range []string{"_NET_ACTIVE_WINDOW", "_NET_WM_STATE", "_NET_WM_STATE_FULLSCREEN"} {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("intern atom %s: %w", name, err)
		}
		c.atoms[name] = reply.Atom
	}
	return c, nil
}

func (c *x11Control) activeWindow() (xproto.Window, error) {
	reply, err := xproto.GetProperty(c.conn, false, c.root,
		c.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 0, 1).Reply()
	if err != nil {
		return 0, fmt.Errorf("query active window: %w", err)
	}
	if len(reply.Value) < 4 {
		return 0, ErrUnavailable
	}
	win := xproto.Window(binary.LittleEndian.Uint32(reply.Value))
	if win == 0 {
		return 0, ErrUnavailable
	}
	return win, nil
}

// setFullscreen sends the EWMH _NET_WM_STATE client message to the window
// manager for the active window.
func (c *x11Control) setFullscreen(action uint32) error {
	win, err := c.activeWindow()
	if err != nil {
		return err
	}

	data := xproto.ClientMessageDataUnionData32New([]uint32{
		action,
		uint32(c.atoms["_NET_WM_STATE_FULLSCREEN"]),
		0, 1, 0,
	})
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   c.atoms["_NET_WM_STATE"],
		Data:   data,
	}
	mask := uint32(xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify)
	return xproto.SendEventChecked(c.conn, false, c.root, mask, string(ev.Bytes())).Check()
}

func (c *x11Control) EnterFullscreen() error {
	return c.setFullscreen(wmStateAdd)
}

func (c *x11Control) ExitFullscreen() error {
	return c.setFullscreen(wmStateRemove)
}

func (c *x11Control) IsFullscreen() (bool, error) {
	win, err := c.activeWindow()
	if err != nil {
		return false, err
	}
	reply, err := xproto.GetProperty(c.conn, false, win,
		c.atoms["_NET_WM_STATE"], xproto.AtomAtom, 0, 32).Reply()
	if err != nil {
		return false, fmt.Errorf("query window state: %w", err)
	}
	fullscreen := c.atoms["_NET_WM_STATE_FULLSCREEN"]
	for v := reply.Value; len(v) >= 4; v = v[4:] {
		if xproto.Atom(binary.LittleEndian.Uint32(v)) == fullscreen {
			return true, nil
		}
	}
	return false, nil
}

func (c *x11Control) ScreenSize() (Size, error) {
	return Size{
		Width:  float64(c.screen.WidthInPixels),
		Height: float64(c.screen.HeightInPixels),
	}, nil
}

func (c *x11Control) Close() error {
	c.conn.Close()
	return nil
}

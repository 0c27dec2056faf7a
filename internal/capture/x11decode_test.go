package capture

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inputcap/internal/event"
)

// rawXEvent builds a 32-byte xEvent record with the fields the decoder
// reads.
func rawXEvent(typ, detail byte, x, y int16, state uint16) []byte {
	raw := make([]byte, xEventSize)
	raw[xEventTypeOff] = typ
	raw[xDetailOff] = detail
	binary.LittleEndian.PutUint16(raw[xRootXOff:], uint16(x))
	binary.LittleEndian.PutUint16(raw[xRootYOff:], uint16(y))
	binary.LittleEndian.PutUint16(raw[xStateOff:], state)
	return raw
}

// testKeymap mimics a server keyboard mapping: keycode 38 is 'a' on common
// layouts, 36 is Return, 50 is Shift_L.
func testKeymap(code byte) uint32 {
	switch code {
	case 36:
		return xkReturn
	case 38:
		return 'a'
	case 50:
		return xkShiftL
	}
	return 0
}

func newTestDecoder() *xDecoder {
	return &xDecoder{lookup: testKeymap}
}

func TestDecodeKeyPressPrintable(t *testing.T) {
	d := newTestDecoder()

	e, ok := d.decode(rawXEvent(xKeyPress, 38, 0, 0, xShiftMask|xMod4Mask))
	require.True(t, ok)

	assert.Equal(t, event.KeyDown, e.Type)
	assert.Equal(t, uint32(38), e.KeyCode)
	assert.Equal(t, "a", e.Key)
	assert.Equal(t, []event.Modifier{event.ModShift, event.ModMeta}, e.Modifiers)

	// No mouse fields on key events.
	assert.Empty(t, e.Button)
	assert.Nil(t, e.X)
	assert.Nil(t, e.Y)
	assert.Nil(t, e.DeltaX)
	assert.Nil(t, e.DeltaY)
}

func TestDecodeKeyReleaseSymbolic(t *testing.T) {
	d := newTestDecoder()

	e, ok := d.decode(rawXEvent(xKeyRelease, 36, 0, 0, xControlMask))
	require.True(t, ok)

	assert.Equal(t, event.KeyUp, e.Type)
	assert.Equal(t, "Return", e.Key)
	assert.Equal(t, []event.Modifier{event.ModControl}, e.Modifiers)
}

func TestDecodeUnknownKeycodeFallbackIsStable(t *testing.T) {
	d := newTestDecoder()

	e1, ok := d.decode(rawXEvent(xKeyPress, 200, 0, 0, 0))
	require.True(t, ok)
	e2, ok := d.decode(rawXEvent(xKeyPress, 200, 0, 0, 0))
	require.True(t, ok)

	assert.Equal(t, "Key0", e1.Key)
	assert.Equal(t, e1.Key, e2.Key, "fallback must be stable across decodes")
	assert.Equal(t, uint32(200), e1.KeyCode)
}

func TestDecodeLeftButtonPress(t *testing.T) {
	d := newTestDecoder()

	e, ok := d.decode(rawXEvent(xButtonPress, 1, 120, 340, 0))
	require.True(t, ok)

	assert.Equal(t, event.MouseDown, e.Type)
	assert.Equal(t, event.ButtonLeft, e.Button)
	require.NotNil(t, e.X)
	require.NotNil(t, e.Y)
	assert.Equal(t, 120.0, *e.X)
	assert.Equal(t, 340.0, *e.Y)

	assert.Zero(t, e.KeyCode)
	assert.Empty(t, e.Key)
}

func TestDecodeButtonNames(t *testing.T) {
	d := newTestDecoder()

	cases := []struct {
		detail byte
		want   event.Button
	}{
		{1, event.ButtonLeft},
		{2, event.ButtonMiddle},
		{3, event.ButtonRight},
		{8, event.ButtonOther},
		{9, event.ButtonOther},
	}
	for _, tc := range cases {
		e, ok := d.decode(rawXEvent(xButtonRelease, tc.detail, 5, 6, 0))
		require.True(t, ok)
		assert.Equal(t, event.MouseUp, e.Type)
		assert.Equal(t, tc.want, e.Button, "button %d", tc.detail)
	}
}

func TestDecodeScrollButtons(t *testing.T) {
	d := newTestDecoder()

	cases := []struct {
		detail   byte
		dx, dy   float64
	}{
		{4, 0, 1},
		{5, 0, -1},
		{6, 1, 0},
		{7, -1, 0},
	}
	for _, tc := range cases {
		for _, typ := range []byte{xButtonPress, xButtonRelease} {
			e, ok := d.decode(rawXEvent(typ, tc.detail, 10, 20, 0))
			require.True(t, ok)
			assert.Equal(t, event.MouseScroll, e.Type, "button %d", tc.detail)
			assert.Empty(t, e.Button, "scroll events carry no button")
			require.NotNil(t, e.DeltaX)
			require.NotNil(t, e.DeltaY)
			assert.Equal(t, tc.dx, *e.DeltaX, "button %d", tc.detail)
			assert.Equal(t, tc.dy, *e.DeltaY, "button %d", tc.detail)
			assert.Nil(t, e.X)
			assert.Nil(t, e.Y)
		}
	}
}

func TestDecodeMotion(t *testing.T) {
	d := newTestDecoder()

	e, ok := d.decode(rawXEvent(xMotionNotify, 0, -3, 900, 0))
	require.True(t, ok)

	assert.Equal(t, event.MouseMove, e.Type)
	require.NotNil(t, e.X)
	require.NotNil(t, e.Y)
	assert.Equal(t, -3.0, *e.X)
	assert.Equal(t, 900.0, *e.Y)
	assert.Empty(t, e.Button)
	assert.Empty(t, e.Key)
	assert.Zero(t, e.KeyCode)
}

func TestDecodeSyntheticBitMasked(t *testing.T) {
	d := newTestDecoder()

	// High bit set marks a SendEvent-generated record; type still decodes.
	e, ok := d.decode(rawXEvent(0x80|xMotionNotify, 0, 1, 2, 0))
	require.True(t, ok)
	assert.Equal(t, event.MouseMove, e.Type)
}

func TestDecodeDropsUnknownAndShortRecords(t *testing.T) {
	d := newTestDecoder()

	_, ok := d.decode(rawXEvent(30, 0, 0, 0, 0))
	assert.False(t, ok, "unknown event types are dropped")

	_, ok = d.decode([]byte{xKeyPress, 38})
	assert.False(t, ok, "short records are dropped")
}

func TestXStateModifiers(t *testing.T) {
	assert.Equal(t, event.ModMask(0), xStateModifiers(0))
	assert.Equal(t, event.MaskShift, xStateModifiers(xShiftMask))
	assert.Equal(t,
		event.MaskShift|event.MaskControl|event.MaskAlt|event.MaskMeta,
		xStateModifiers(xShiftMask|xControlMask|xMod1Mask|xMod4Mask))
	// Lock (bit 1) and unrelated button bits do not leak into the set.
	assert.Equal(t, event.ModMask(0), xStateModifiers(1<<1|1<<8))
}

func TestKeysymNameTable(t *testing.T) {
	assert.Equal(t, "a", keysymName('a'))
	assert.Equal(t, "A", keysymName('A'))
	assert.Equal(t, " ", keysymName(' '))
	assert.Equal(t, "~", keysymName('~'))
	assert.Equal(t, "F1", keysymName(xkF1))
	assert.Equal(t, "F12", keysymName(xkF12))
	assert.Equal(t, "Shift", keysymName(xkShiftL))
	assert.Equal(t, "Shift", keysymName(xkShiftR))
	assert.Equal(t, "Meta", keysymName(xkSuperL))
	assert.Equal(t, "Backspace", keysymName(xkBackSpace))
	assert.Equal(t, "PageDown", keysymName(xkPageDown))
	assert.Equal(t, "Key65027", keysymName(65027))
}

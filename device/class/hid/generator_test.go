package hid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMouseTracesSquare(t *testing.T) {
	var m Mouse
	var x, y int
	for i := 1; i <= 64; i++ {
		r := m.Next()
		assert.Zero(t, r.Buttons)
		assert.Zero(t, r.Wheel)
		if i%4 != 0 {
			assert.Equal(t, MouseReport{}, r, "poll %d", i)
			continue
		}
		x += int(r.X)
		y += int(r.Y)
		assert.Equal(t, 1, abs(int(r.X))+abs(int(r.Y)), "poll %d", i)
	}
	assert.Equal(t, uint32(64), m.Polls())
	assert.Zero(t, x)
	assert.Zero(t, y)
}

func TestMouseDirections(t *testing.T) {
	var m Mouse
	var got []MouseReport
	for i := 0; i < 16; i++ {
		if r := m.Next(); r != (MouseReport{}) {
			got = append(got, r)
		}
	}
	assert.Equal(t, []MouseReport{{Y: 1}, {X: -1}, {Y: -1}, {X: 1}}, got)
}

func TestKeyboardPressesB(t *testing.T) {
	var k Keyboard
	var pressed []int
	for i := 1; i <= 3*KeyPeriod; i++ {
		r := k.Next()
		assert.Zero(t, r.Modifiers)
		switch r.Keys[2] {
		case KeyB:
			pressed = append(pressed, i)
		case KeyNone:
		default:
			t.Fatalf("poll %d: unexpected key %#x", i, r.Keys[2])
		}
		var buf [KeyboardReportSize]byte
		r.MarshalTo(buf[:])
		assert.Equal(t, r.Keys[2], buf[4])
	}
	assert.Equal(t, []int{2, 2 + KeyPeriod, 2 + 2*KeyPeriod}, pressed)
	assert.Equal(t, uint32(3*KeyPeriod), k.Polls())
}

func TestCompositeDefaults(t *testing.T) {
	c := NewComposite()
	assert.Zero(t, c.LEDs())
	assert.Equal(t, uint8(ProtocolReport), c.Protocol(InterfaceMouse))
	assert.Equal(t, uint8(ProtocolReport), c.Protocol(InterfaceKeyboard))
	assert.Equal(t, uint8(ProtocolNone), c.Protocol(7))
	assert.Zero(t, c.IdleRate(InterfaceKeyboard))
	assert.Zero(t, c.IdleRate(7))

	desc, err := NewDescriptors(Options{})
	assert.NoError(t, err)
	cfg := c.Config(desc)
	assert.Same(t, desc, cfg.Descriptors)
	assert.Same(t, c, cfg.InHandler)
	assert.Same(t, c, cfg.DataHandler)
	assert.Same(t, c, cfg.ControlHandler)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package hid

import (
	"log/slog"
	"sync/atomic"

	"github.com/ardnew/bitusb/device"
	"github.com/ardnew/bitusb/pkg"
	"github.com/ardnew/bitusb/pkg/wire"
)

// Composite is the application side of the composite mouse+keyboard
// device. It answers IN tokens on the interrupt endpoints, takes the
// keyboard LED output report and the HID class requests of both interfaces.
//
// The handlers run in interrupt context. LEDs, Protocol and IdleRate may be
// read from any goroutine.
type Composite struct {
	Mouse    Mouse
	Keyboard Keyboard

	leds     atomic.Uint32
	protocol [2]atomic.Uint32
	idle     [2]atomic.Uint32

	// reply backs one-byte GET_IDLE/GET_PROTOCOL data stages.
	reply [1]byte

	onLEDs func(leds uint8)
}

// NewComposite returns a composite in report protocol with infinite idle.
func NewComposite() *Composite {
	c := &Composite{}
	for i := range c.protocol {
		c.protocol[i].Store(ProtocolReport)
	}
	return c
}

// SetOnLEDs sets a callback run from interrupt context when the host writes
// the keyboard LED report. It must not block.
func (c *Composite) SetOnLEDs(cb func(leds uint8)) {
	c.onLEDs = cb
}

// Config returns a device configuration wired to c and desc.
func (c *Composite) Config(desc device.DescriptorLookup) device.Config {
	return device.Config{
		Endpoints:      device.DefaultEndpoints,
		Descriptors:    desc,
		InHandler:      c,
		DataHandler:    c,
		ControlHandler: c,
	}
}

// HandleIn implements [device.InHandler].
func (c *Composite) HandleIn(d *device.Device, ep *device.Endpoint, scratch []byte, endp uint8, token wire.PID) {
	switch endp {
	case EndpointMouse:
		r := c.Mouse.Next()
		n := r.MarshalTo(scratch)
		d.SendData(scratch[:n], device.PolyCRC16, token)
	case EndpointKeyboard:
		r := c.Keyboard.Next()
		n := r.MarshalTo(scratch)
		d.SendData(scratch[:n], device.PolyCRC16, token)
	default:
		d.SendEmpty(token)
	}
}

// HandleData implements [device.DataHandler]. Only the keyboard output
// report on endpoint 0 is consumed.
func (c *Composite) HandleData(d *device.Device, ep *device.Endpoint, endp uint8, data []byte) {
	if endp != 0 {
		return
	}
	s := d.LastSetup()
	if !s.IsClass() || s.Request != RequestSetReport ||
		s.InterfaceNumber() != InterfaceKeyboard || uint8(s.Value>>8) != device.ReportTypeOutput {
		return
	}
	leds := data[0]
	c.leds.Store(uint32(leds))
	if pkg.LogEnabled(slog.LevelDebug) {
		pkg.LogDebug(pkg.ComponentHID, "keyboard LEDs", "leds", leds)
	}
	if c.onLEDs != nil {
		c.onLEDs(leds)
	}
}

// HandleControl implements [device.ControlHandler] for the HID class
// requests SET_IDLE, GET_IDLE, SET_PROTOCOL and GET_PROTOCOL.
func (c *Composite) HandleControl(d *device.Device, ep *device.Endpoint, s *device.SetupPacket) {
	if !s.IsClass() || !s.IsInterfaceRecipient() {
		return
	}
	iface := s.InterfaceNumber()
	if iface > InterfaceKeyboard {
		return
	}
	switch s.Request {
	case RequestSetIdle:
		c.idle[iface].Store(uint32(s.Value >> 8))
	case RequestGetIdle:
		c.reply[0] = uint8(c.idle[iface].Load())
		ep.Arm(c.reply[:], s.Length)
	case RequestSetProtocol:
		c.protocol[iface].Store(uint32(s.Value & 1))
	case RequestGetProtocol:
		c.reply[0] = uint8(c.protocol[iface].Load())
		ep.Arm(c.reply[:], s.Length)
	}
}

// LEDs returns the last keyboard LED state written by the host.
func (c *Composite) LEDs() uint8 {
	return uint8(c.leds.Load())
}

// Protocol returns the protocol selected for an interface.
func (c *Composite) Protocol(iface uint8) uint8 {
	if int(iface) >= len(c.protocol) {
		return ProtocolNone
	}
	return uint8(c.protocol[iface].Load())
}

// IdleRate returns the idle rate of an interface in 4 ms units. Zero means
// reports are only sent on change.
func (c *Composite) IdleRate(iface uint8) uint8 {
	if int(iface) >= len(c.idle) {
		return 0
	}
	return uint8(c.idle[iface].Load())
}

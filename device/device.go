package device

import (
	"sync/atomic"

	"github.com/ardnew/bitusb/device/hal"
	"github.com/ardnew/bitusb/pkg"
	"github.com/ardnew/bitusb/pkg/wire"
)

// InHandler produces the response to IN tokens on endpoints that are not
// served from the endpoint 0 buffer: every endpoint other than 0, and
// endpoint 0 when it is marked Custom.
//
// HandleIn runs in interrupt context inside the bus turnaround window. It
// must respond with exactly one of d.SendData, d.SendEmpty or
// d.SendHandshake and return without blocking. scratch is a device-owned
// buffer of Endpoint0Size bytes the handler may fill and send.
type InHandler interface {
	HandleIn(d *Device, ep *Endpoint, scratch []byte, endp uint8, token wire.PID)
}

// InHandlerFunc adapts a function to InHandler.
type InHandlerFunc func(d *Device, ep *Endpoint, scratch []byte, endp uint8, token wire.PID)

// HandleIn implements InHandler.
func (f InHandlerFunc) HandleIn(d *Device, ep *Endpoint, scratch []byte, endp uint8, token wire.PID) {
	f(d, ep, scratch, endp, token)
}

// DataHandler receives OUT payloads that are not SETUP requests: data
// stages on endpoint 0 and OUT data on other endpoints. The payload is only
// valid during the call. The device ACKs after the handler returns.
type DataHandler interface {
	HandleData(d *Device, ep *Endpoint, endp uint8, data []byte)
}

// DataHandlerFunc adapts a function to DataHandler.
type DataHandlerFunc func(d *Device, ep *Endpoint, endp uint8, data []byte)

// HandleData implements DataHandler.
func (f DataHandlerFunc) HandleData(d *Device, ep *Endpoint, endp uint8, data []byte) {
	f(d, ep, endp, data)
}

// ControlHandler sees control requests the core does not recognise. It may
// arm ep with its own buffer (ep.Arm) or set ep.Custom to answer the data
// stage from the InHandler. Doing nothing completes the transfer with an
// empty status stage.
type ControlHandler interface {
	HandleControl(d *Device, ep *Endpoint, setup *SetupPacket)
}

// ControlHandlerFunc adapts a function to ControlHandler.
type ControlHandlerFunc func(d *Device, ep *Endpoint, setup *SetupPacket)

// HandleControl implements ControlHandler.
func (f ControlHandlerFunc) HandleControl(d *Device, ep *Endpoint, setup *SetupPacket) {
	f(d, ep, setup)
}

// Config holds the collaborators of a Device.
type Config struct {
	// Endpoints is the number of endpoints served, including endpoint 0.
	// Zero selects DefaultEndpoints.
	Endpoints int

	// Descriptors resolves GET_DESCRIPTOR selectors. Required.
	Descriptors DescriptorLookup

	// InHandler answers IN tokens on non-control or custom endpoints.
	InHandler InHandler

	// DataHandler receives non-SETUP OUT payloads. Optional.
	DataHandler DataHandler

	// ControlHandler receives unrecognised control requests. Optional.
	ControlHandler ControlHandler
}

// Device is the protocol state of a bit-banged low-speed USB function.
//
// All state is owned by the edge interrupt handler. After Attach, nothing
// outside HandleInterrupt and the handlers it calls may write to a Device;
// the accessors may be called from other contexts and accept torn reads.
// The Stats counters are safe to read concurrently.
type Device struct {
	hal hal.DeviceHAL

	descriptors DescriptorLookup
	inHandler   InHandler
	dataHandler DataHandler
	ctlHandler  ControlHandler

	endpoints    [MaxEndpoints]Endpoint
	numEndpoints uint8

	currentEndpoint uint8
	address         uint8
	prevAddress     uint8
	addressPending  bool
	setupRequest    bool
	lastSetup       SetupPacket

	lastSE0  uint32
	deltaSE0 int32
	windup   int32

	reboot RebootStage
	halted bool

	pkt     packet
	scratch [Endpoint0Size]byte
	enc     wire.Encoder

	stats counters
}

// New creates a device bound to the given HAL.
func New(h hal.DeviceHAL, cfg Config) *Device {
	n := cfg.Endpoints
	if n <= 0 {
		n = DefaultEndpoints
	}
	if n > MaxEndpoints {
		n = MaxEndpoints
	}
	descriptors := cfg.Descriptors
	if descriptors == nil {
		descriptors = &DescriptorTable{}
	}
	d := &Device{
		hal:          h,
		descriptors:  descriptors,
		inHandler:    cfg.InHandler,
		dataHandler:  cfg.DataHandler,
		ctlHandler:   cfg.ControlHandler,
		numEndpoints: uint8(n),
	}
	d.lastSE0 = h.Cycles()
	return d
}

// Attach binds the edge interrupt handler into vt. Interrupts must not be
// enabled before Attach returns.
func (d *Device) Attach(vt *hal.VectorTable) {
	vt.Bind(hal.IRQEXTI7_0, d.HandleInterrupt)
	pkg.LogDebug(pkg.ComponentPHY, "edge interrupt attached",
		"irq", hal.IRQEXTI7_0.String(), "endpoints", d.numEndpoints)
}

// Reset returns the device to its power-on state. It must not be called
// while the interrupt is enabled.
func (d *Device) Reset() {
	d.resetBus()
	d.lastSE0 = d.hal.Cycles()
	d.deltaSE0 = 0
	d.windup = 0
	d.halted = false
}

// NumEndpoints returns the number of endpoints served.
func (d *Device) NumEndpoints() int {
	return int(d.numEndpoints)
}

// Endpoint returns the state of endpoint n, or nil if n is out of range.
func (d *Device) Endpoint(n uint8) *Endpoint {
	if n >= d.numEndpoints {
		return nil
	}
	return &d.endpoints[n]
}

// CurrentEndpoint returns the endpoint of the most recent token.
func (d *Device) CurrentEndpoint() uint8 {
	return d.currentEndpoint
}

// Address returns the assigned bus address.
func (d *Device) Address() uint8 {
	return d.address
}

// State returns the USB device state.
func (d *Device) State() State {
	switch {
	case d.halted:
		return StateHalted
	case d.address != 0:
		return StateAddress
	default:
		return StateDefault
	}
}

// ControlState returns the control transfer state of endpoint 0.
func (d *Device) ControlState() ControlState {
	switch {
	case d.setupRequest:
		return ControlSetupPending
	case d.endpoints[0].Remaining() > 0:
		return ControlDataIn
	default:
		return ControlIdle
	}
}

// SetupRequest reports whether the next DATA0 is expected to carry a URB.
func (d *Device) SetupRequest() bool {
	return d.setupRequest
}

// LastSetup returns the most recently parsed control request.
func (d *Device) LastSetup() SetupPacket {
	return d.lastSetup
}

// RebootStage returns the bootloader latch stage.
func (d *Device) RebootStage() RebootStage {
	return d.reboot
}

// Halted reports whether the device has reset into the bootloader.
func (d *Device) Halted() bool {
	return d.halted
}

// Stats is a snapshot of the receive and protocol counters.
type Stats struct {
	Frames      uint32 // Frames decoded and dispatched
	Keepalives  uint32 // SE0 keepalive events
	Glitches    uint32 // Edges with no start of packet
	SyncErrors  uint32 // Malformed preambles
	StuffErrors uint32 // Bit stuffing violations
	AlignErrors uint32 // End of packet off a byte boundary
	Overruns    uint32 // Frames longer than the packet buffer
	CRCErrors   uint32 // Data CRC16 or token CRC5 failures
	Ignored     uint32 // Tokens for another address or endpoint
	Malformed   uint32 // Tokens of the wrong length
	Duplicates  uint32 // DATA packets re-ACKed on toggle mismatch
	TrimSteps   uint32 // Oscillator trim adjustments
	BusResets   uint32 // SE0 held long enough to reset the bus
}

type counters struct {
	frames, keepalives, glitches, syncErrors, stuffErrors atomic.Uint32
	alignErrors, overruns, crcErrors, ignored, duplicates atomic.Uint32
	malformed, trimSteps, busResets                       atomic.Uint32
}

// Stats returns a snapshot of the counters.
func (d *Device) Stats() Stats {
	c := &d.stats
	return Stats{
		Frames:      c.frames.Load(),
		Keepalives:  c.keepalives.Load(),
		Glitches:    c.glitches.Load(),
		SyncErrors:  c.syncErrors.Load(),
		StuffErrors: c.stuffErrors.Load(),
		AlignErrors: c.alignErrors.Load(),
		Overruns:    c.overruns.Load(),
		CRCErrors:   c.crcErrors.Load(),
		Ignored:     c.ignored.Load(),
		Malformed:   c.malformed.Load(),
		Duplicates:  c.duplicates.Load(),
		TrimSteps:   c.trimSteps.Load(),
		BusResets:   c.busResets.Load(),
	}
}

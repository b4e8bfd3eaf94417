package hal

import (
	"fmt"

	"github.com/ardnew/bitusb/pkg/wire"
)

// Speed represents the USB connection speed.
type Speed uint8

// USB speed constants. Only low speed is driven by this stack; the others
// are reported when a descriptor claims them.
const (
	SpeedUnknown Speed = iota // Not connected or unknown
	SpeedLow                  // Low Speed (1.5 Mbit/s)
	SpeedFull                 // Full Speed (12 Mbit/s)
)

// String returns a human-readable speed name.
func (s Speed) String() string {
	switch s {
	case SpeedLow:
		return "Low Speed"
	case SpeedFull:
		return "Full Speed"
	default:
		return "Unknown"
	}
}

// DeviceAddress represents a USB device address (0-127). Address 0 is the
// default address every device answers after reset.
type DeviceAddress uint8

// Address limits.
const (
	DefaultAddress DeviceAddress = 0
	MaxAddress     DeviceAddress = 127
)

// Valid reports whether a is assignable with SET_ADDRESS.
func (a DeviceAddress) Valid() bool {
	return a > DefaultAddress && a <= MaxAddress
}

// String returns the address in decimal.
func (a DeviceAddress) String() string {
	return fmt.Sprintf("%d", uint8(a))
}

// Port is the host side of one low-speed bus segment.
//
// Transact drives a complete packet waveform onto the bus and returns the
// line states the device drove in reply, or nil if it stayed silent for the
// turnaround window. KeepAlive issues the low-speed end-of-frame keepalive,
// BusReset holds SE0 long enough to reset the device, and Now returns the
// host clock in nanoseconds.
//
// A Port is not safe for concurrent use; the host stack serialises access.
type Port interface {
	Transact(w []wire.LineState) []wire.LineState
	KeepAlive()
	BusReset()
	Now() float64
}

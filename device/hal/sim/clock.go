package sim

import "github.com/ardnew/bitusb/device/hal"

// DefaultTrimStep is the relative frequency change per trim code.
const DefaultTrimStep = 0.0025

// DefaultControl is the oscillator control register after power-on: the
// oscillator enabled and ready with the trim field centred.
const DefaultControl uint32 = 0x0000_5083

// FrameNs is the host frame period in nanoseconds.
const FrameNs = 1e6

// ResetNs is how long a host holds SE0 to reset the bus.
const ResetNs = 10e6

// Frequency returns the current device core frequency in Hz.
func (b *Bus) Frequency() float64 {
	trim := float64(hal.TrimField(b.control)) - hal.TrimCenter
	return hal.CoreClockHz * (1 + b.cfg.Drift) * (1 + trim*b.cfg.TrimStep)
}

// Now returns the simulated host time in nanoseconds.
func (b *Bus) Now() float64 {
	return b.now
}

// Cycles implements [hal.Clock].
func (b *Bus) Cycles() uint32 {
	return uint32(uint64(b.cycles))
}

// ReadControl implements [hal.Clock].
func (b *Bus) ReadControl() uint32 {
	return b.control
}

// WriteControl implements [hal.Clock].
func (b *Bus) WriteControl(v uint32) {
	b.control = v
}

// Trim returns the current trim code.
func (b *Bus) Trim() uint8 {
	return hal.TrimField(b.control)
}

// Advance moves simulated time forward by ns.
func (b *Bus) Advance(ns float64) {
	if ns <= 0 {
		return
	}
	b.now += ns
	b.cycles += ns * b.Frequency() / 1e9
}

// deviceBitNs is the host-time length of one device bit (32 cycles).
func (b *Bus) deviceBitNs() float64 {
	return hal.CyclesPerBit * 1e9 / b.Frequency()
}

// nextFrame returns the start time of the next frame after now.
func (b *Bus) nextFrame() float64 {
	n := float64(int64(b.now/FrameNs)+1) * FrameNs
	return n
}

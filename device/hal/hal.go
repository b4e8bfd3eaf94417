package hal

import "github.com/ardnew/bitusb/pkg/wire"

// Timing of the bit engine. The core runs from the trimmed internal
// oscillator at 48 MHz, so one low-speed bit is 32 cycles and the 1 ms
// keepalive interval is 48000 cycles.
const (
	CoreClockHz  = 48_000_000
	BitRateHz    = 1_500_000
	CyclesPerBit = CoreClockHz / BitRateHz
	FrameCycles  = CoreClockHz / 1000

	// BitTimeNs is the nominal low-speed bit period in nanoseconds.
	BitTimeNs = 1e9 / float64(BitRateHz)

	// BitTolerance is the allowed relative deviation of a transmitted bit
	// period from BitTimeNs.
	BitTolerance = 0.015
)

// Oscillator control register layout. The trim field occupies bits [7:3];
// every other bit belongs to unrelated clock control and must be preserved.
const (
	TrimShift  = 3
	TrimMask   = uint32(0x1F) << TrimShift
	TrimMax    = 0x1F
	TrimCenter = 0x10
)

// Flash unlock keys for the boot-mode register.
const (
	BootKey1 uint32 = 0x45670123
	BootKey2 uint32 = 0xCDEF89AB
)

// Bus is the pair of GPIO pins carrying D+ and D-.
//
// Sample and Drive are the timing primitives of the bit engine: each call
// consumes exactly one low-speed bit time. Implementations on real hardware
// back them with cycle-counted delay loops.
type Bus interface {
	// Sample reads the line state at the centre of the next bit time.
	Sample() wire.LineState

	// Drive switches both pins to outputs (if not already) and holds the
	// given state for one bit time.
	Drive(s wire.LineState)

	// Release returns both pins to floating inputs so the host can drive
	// the bus.
	Release()

	// AckInterrupt clears the pending edge interrupt flag.
	AckInterrupt()
}

// Clock exposes the free-running cycle counter and the oscillator control
// register holding the trim field.
type Clock interface {
	// Cycles returns the free-running core cycle counter. It wraps.
	Cycles() uint32

	// ReadControl returns the oscillator control register.
	ReadControl() uint32

	// WriteControl stores the oscillator control register.
	WriteControl(v uint32)
}

// System holds the irreversible actions of the bootloader entry sequence.
type System interface {
	// UnlockBootMode writes one key of the boot-mode unlock sequence.
	UnlockBootMode(key uint32)

	// SetBootMode selects the bootloader (true) or user image for the next
	// reset.
	SetBootMode(bootloader bool)

	// LockFlash relocks the flash controller.
	LockFlash()

	// ClearResetFlags clears the recorded reset cause.
	ClearResetFlags()

	// Reset performs a system reset. On hardware it does not return.
	Reset()
}

// DeviceHAL is everything the protocol core needs from the platform.
type DeviceHAL interface {
	Bus
	Clock
	System
}

// TrimField extracts the trim value from an oscillator control register.
func TrimField(ctl uint32) uint8 {
	return uint8((ctl & TrimMask) >> TrimShift)
}

// WithTrim replaces the trim field of ctl, preserving all other bits.
func WithTrim(ctl uint32, trim uint8) uint32 {
	return (ctl &^ TrimMask) | (uint32(trim)<<TrimShift)&TrimMask
}

// Package hal defines the hardware abstraction consumed by the bit-banged
// USB device core.
//
// There is no USB peripheral behind this interface. The core samples and
// drives the D+/D- pins itself, so the HAL is reduced to a handful of
// timing primitives:
//
//   - [Bus]: sample or drive one line state per bit time, release the pins,
//     clear the edge interrupt
//   - [Clock]: the free-running cycle counter and the oscillator control
//     register that holds the trim field
//   - [System]: flash unlock, boot-mode selection and system reset used by
//     the bootloader entry sequence
//
// [DeviceHAL] combines the three. A [VectorTable] maps interrupt numbers to
// handlers; the device binds its edge handler to [IRQEXTI7_0].
//
// # Timing Contract
//
// Every [Bus.Sample] and [Bus.Drive] call accounts for exactly one bit time
// ([CyclesPerBit] core cycles). The protocol logic above the HAL is
// portable; only these primitives are target specific. The simulator in
// [github.com/ardnew/bitusb/device/hal/sim] implements them against a
// modelled oscillator and records every transition so the timing can be
// checked like a logic analyzer capture.
//
// # Example
//
//	var vt hal.VectorTable
//	dev := device.New(bus, cfg)
//	dev.Attach(&vt)
//	vt.Dispatch(hal.IRQEXTI7_0) // what the edge interrupt does
package hal

// Package sim provides a logic-level simulation of the USB low-speed bus for
// the bit-banged device core.
//
// A [Bus] implements [hal.DeviceHAL] on the device side and a transaction
// port on the host side. Host packets are queued as line states and the
// device's edge interrupt is raised through a [hal.VectorTable]; the device
// samples the queue one bit time at a time and whatever it drives back is
// returned to the host.
//
// # Time Model
//
// Simulated time is kept in nanoseconds of host time. The device oscillator
// runs at 48 MHz scaled by a configurable drift and by the trim field of the
// oscillator control register ([Config.TrimStep] per code around the
// centre value 16). The cycle counter advances with simulated time at the
// oscillator frequency, so a drifted device sees keepalive intervals that
// are too long or too short and trims itself back.
//
// Each [Bus.Drive] lasts 32 device cycles, measured in host time. Every
// driven bit is recorded with its start time in a [Frame], which plays the
// role of a logic analyzer capture for checking the ±1.5 % bit timing
// contract.
//
// # System Recorder
//
// Flash key writes, boot-mode selection and resets are recorded in order as
// [SystemEvent] values. A reset halts the simulated device: later
// transactions see no response.
//
// The simulator is single threaded and not safe for concurrent use.
package sim

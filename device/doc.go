// Package device implements the protocol core of a bit-banged USB 1.1
// low-speed function.
//
// There is no USB peripheral. The core runs entirely inside one edge
// interrupt: it samples D+/D- through the [hal.Bus] timing primitives,
// synchronises to the preamble, NRZI-decodes and unstuffs the packet while
// running its CRC, dispatches on the PID, and transmits any response before
// the interrupt returns.
//
// # Architecture
//
// The core is organized into a few cooperating pieces, all methods of
// [Device]:
//
//   - Receive engine: [Device.HandleInterrupt] detects keepalive SE0,
//     rejects glitches and bad preambles, and decodes into a fixed 12-byte
//     packet buffer with a running CRC5 or CRC16
//   - Dispatcher: ACK, DATA0/DATA1, IN, OUT and SETUP handlers; tokens are
//     filtered by CRC5, endpoint range and address
//   - Control state machine: SETUP, URB parsing, GET_DESCRIPTOR buffering
//     in 8-byte chunks, SET_ADDRESS, the bootloader latch
//   - Transmit engine: [Device.SendData], [Device.SendEmpty] and
//     [Device.SendHandshake]
//   - Keepalive trim: an integrating controller on the oscillator trim
//     field driven by the 1 ms keepalive interval
//
// # Collaborators
//
// Descriptor data and report generation stay outside the core. A
// [DescriptorLookup] resolves the 32-bit [Selector] of GET_DESCRIPTOR, and
// an [InHandler] answers IN tokens on interrupt endpoints. Optional
// [DataHandler] and [ControlHandler] hooks see OUT payloads and requests the
// core does not handle.
//
// # Concurrency
//
// All protocol state belongs to the interrupt. There are no locks: the
// interrupt never re-enters and nothing else writes to a [Device] after
// [Device.Attach]. Accessors may be read from the main loop with torn reads
// tolerated; [Device.Stats] uses atomics.
//
// # Errors
//
// Nothing in the interrupt path returns an error. Glitches, bad preambles,
// stuffing errors, CRC failures and foreign tokens are dropped silently and
// counted; the host times out and retries. Duplicate DATA packets are
// re-ACKed without being processed again.
//
// # Example
//
//	bus := sim.New(sim.Config{Drift: 0.01})
//	dev := device.New(bus, device.Config{
//	    Descriptors: table,
//	    InHandler:   reports,
//	})
//	dev.Attach(bus.Vectors())
package device

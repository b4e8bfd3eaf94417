// Package hal defines the bus interface the host stack drives.
//
// The host stack implements all protocol logic: token and data encoding,
// toggles, retries and control transfer sequencing. A [Port] only moves
// line states. The simulated bus in
// [github.com/ardnew/bitusb/device/hal/sim] implements it, which lets the
// host enumerate and poll a device stack running against simulated pins.
//
// # Example
//
//	bus := sim.New(sim.Config{})
//	var port hal.Port = bus
//	reply := port.Transact(wire.EncodeToken(wire.PIDIn, wire.Token{Endp: 1}))
package hal

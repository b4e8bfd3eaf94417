// Package host implements the host side of a low-speed USB bus: the
// transactions, control transfers and enumeration a root hub performs.
//
// It drives a [hal.Port] at the line level, encoding every token and data
// packet with [github.com/ardnew/bitusb/pkg/wire] and decoding the reply.
// Paired with the simulated bus it exercises a device stack end to end.
//
// # Architecture
//
//   - Host serialises transactions and tracks data toggles per endpoint
//   - Setup, In and Out are single transactions with bounded retries
//   - ControlIn and ControlOut sequence the SETUP, data and status stages
//   - Enumerate reads descriptors, assigns an address and configures
//   - Poller services interrupt endpoints once per bInterval frames and
//     sends a keepalive every frame
//
// # Errors
//
// A transaction that keeps failing with no response, a CRC error or NAK
// returns an error wrapping [pkg.ErrTimeout] and the last failure. STALL
// and malformed replies fail at once.
//
// # Example
//
//	bus := sim.New(sim.Config{})
//	desc, _ := hid.NewDescriptors(hid.Options{})
//	app := hid.NewComposite()
//	device.New(bus, app.Config(desc)).Attach(bus.Vectors())
//
//	h := host.New(bus)
//	dev, err := h.Enumerate(ctx, 1)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(dev.Manufacturer(), dev.Product())
package host

// Package hid implements the composite boot mouse and keyboard that runs on
// the bit-banged device stack.
//
// # Descriptors
//
// Report descriptors are written as item trees ([Report], [Collection],
// [Usage], [Input] and so on) and encoded once at construction.
// [NewDescriptors] builds the device, configuration, class, report and
// string descriptors into fixed storage and serves them by selector through
// [device.DescriptorLookup]. The configuration descriptor declares the
// report descriptor lengths; if an encoded report descriptor differs from
// its declared length the product string becomes [ErrorProduct].
//
// # Reports
//
// [Composite] answers IN tokens on endpoint 1 with a 4-byte mouse report
// and on endpoint 2 with an 8-byte keyboard report. Both come from demo
// generators: the mouse traces a square one step every fourth poll and the
// keyboard presses B once every [KeyPeriod] polls. The keyboard LED output
// report and the SET_IDLE, GET_IDLE, SET_PROTOCOL and GET_PROTOCOL class
// requests are handled on endpoint 0.
//
// # Usage
//
//	desc, err := hid.NewDescriptors(hid.Options{})
//	if err != nil {
//	    return err
//	}
//	app := hid.NewComposite()
//	app.SetOnLEDs(func(leds uint8) { /* caps lock */ })
//
//	dev := device.New(bus, app.Config(desc))
//	dev.Attach(bus.Vectors())
package hid

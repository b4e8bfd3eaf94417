// Package cmd implements the bitusb subcommands. Every command runs against
// a simulated bus carrying the composite HID device, driven by the
// simulated host.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardnew/bitusb/device"
	"github.com/ardnew/bitusb/device/class/hid"
	"github.com/ardnew/bitusb/device/hal/sim"
	"github.com/ardnew/bitusb/host"
)

// Target selects the simulated device and how the host addresses it.
type Target struct {
	Drift    float64 `help:"Fractional error of the untrimmed device oscillator" default:"0" env:"BITUSB_DRIFT"`
	TrimStep float64 `help:"Relative frequency change per trim code" default:"0.0025" env:"BITUSB_TRIM_STEP"`
	Address  uint8   `help:"Address assigned during enumeration (1-127)" default:"1" env:"BITUSB_ADDRESS"`
	Retries  int     `help:"Transaction retries after a timeout or CRC error" default:"3" env:"BITUSB_RETRIES"`

	VendorID     uint16 `name:"vid" help:"Device vendor ID (0 for the default)" default:"0" env:"BITUSB_VID"`
	ProductID    uint16 `name:"pid" help:"Device product ID (0 for the default)" default:"0" env:"BITUSB_PID"`
	Manufacturer string `help:"Manufacturer string" env:"BITUSB_MANUFACTURER"`
	Product      string `help:"Product string" env:"BITUSB_PRODUCT"`
	Serial       string `help:"Serial number string" env:"BITUSB_SERIAL"`
}

// rig is one simulated bus with the device attached and a host driving it.
type rig struct {
	bus  *sim.Bus
	dev  *device.Device
	app  *hid.Composite
	host *host.Host
}

func (t *Target) build() (*rig, error) {
	desc, err := hid.NewDescriptors(hid.Options{
		VendorID:     t.VendorID,
		ProductID:    t.ProductID,
		Manufacturer: t.Manufacturer,
		Product:      t.Product,
		Serial:       t.Serial,
	})
	if err != nil {
		return nil, fmt.Errorf("descriptors: %w", err)
	}
	bus := sim.New(sim.Config{Drift: t.Drift, TrimStep: t.TrimStep})
	app := hid.NewComposite()
	dev := device.New(bus, app.Config(desc))
	dev.Attach(bus.Vectors())

	h := host.New(bus)
	h.SetRetries(t.Retries)
	return &rig{bus: bus, dev: dev, app: app, host: h}, nil
}

// enumerate builds the rig and enumerates the device at t.Address.
func (t *Target) enumerate(ctx context.Context) (*rig, *host.Device, error) {
	r, err := t.build()
	if err != nil {
		return nil, nil, err
	}
	d, err := r.host.Enumerate(ctx, t.Address)
	if err != nil {
		return r, nil, err
	}
	return r, d, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

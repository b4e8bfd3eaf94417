package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/bitusb/device"
	"github.com/ardnew/bitusb/pkg"
)

// Bootloader enumerates the device, sends the bootloader request and prints
// the system writes the device made on its way out.
type Bootloader struct {
	Target `embed:""`
}

// Run is called by Kong when the bootloader command is executed.
func (c *Bootloader) Run(logger *slog.Logger, out io.Writer) error {
	ctx, stop := signalContext()
	defer stop()

	r, d, err := c.enumerate(ctx)
	if err != nil {
		return err
	}
	if err := d.EnterBootloader(ctx); err != nil {
		return err
	}
	logger.Info("bootloader requested", "address", d.Address(), "stage", r.dev.RebootStage())

	fmt.Fprintf(out, "Device %d: %s, reboot latch %s\n", d.Address(), r.dev.State(), r.dev.RebootStage())
	for i, ev := range r.bus.SystemEvents() {
		fmt.Fprintf(out, "  %d %-18s %08x\n", i, ev.Op, ev.Value)
	}
	if boot, ok := r.bus.BootMode(); ok {
		fmt.Fprintf(out, "Boot mode: bootloader=%t\n", boot)
	}

	var buf [device.DeviceDescriptorSize]byte
	_, err = r.host.GetDescriptor(ctx, d.Address(), device.DescriptorTypeDevice, 0, 0, buf[:])
	switch {
	case errors.Is(err, pkg.ErrNoResponse):
		fmt.Fprintln(out, "Device no longer responds")
	case err != nil:
		return fmt.Errorf("get descriptor after reset: %w", err)
	default:
		return errors.New("device still answering after bootloader request")
	}
	return nil
}

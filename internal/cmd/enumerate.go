package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/bitusb/host"
	"github.com/ardnew/bitusb/pkg/usbid"
)

// Enumerate enumerates the simulated device and prints its descriptors.
type Enumerate struct {
	Target `embed:""`

	Raw    bool   `help:"Also print the raw configuration and report descriptors" env:"BITUSB_RAW"`
	USBIDs string `name:"usb-ids" help:"USB ID database for vendor names (default: system locations)" env:"BITUSB_USB_IDS"`
}

// Run is called by Kong when the enumerate command is executed.
func (c *Enumerate) Run(logger *slog.Logger, out io.Writer) error {
	ctx, stop := signalContext()
	defer stop()

	r, d, err := c.enumerate(ctx)
	if err != nil {
		return err
	}
	logger.Info("device enumerated", "address", d.Address(), "trim", r.bus.Trim())
	printDevice(out, d, c.Raw)
	printNames(out, d, c.loadNames(logger))

	s := r.host.Stats()
	fmt.Fprintf(out, "Transactions: %d (retries %d, failures %d)\n", s.Transactions, s.Retries, s.Failures)
	return nil
}

// loadNames loads the USB ID database. A missing database only costs the
// names.
func (c *Enumerate) loadNames(logger *slog.Logger) *usbid.Database {
	var paths []string
	if c.USBIDs != "" {
		paths = append(paths, c.USBIDs)
	}
	db, err := usbid.Load(paths...)
	if err != nil {
		logger.Debug("no USB ID database", "error", err)
		return nil
	}
	return db
}

func printNames(out io.Writer, d *host.Device, db *usbid.Database) {
	if vendor := db.Vendor(d.VendorID()); vendor != "" {
		fmt.Fprintf(out, "Vendor: %s\n", vendor)
	}
	if product := db.Product(d.VendorID(), d.ProductID()); product != "" {
		fmt.Fprintf(out, "Product: %s\n", product)
	}
}

func printDevice(out io.Writer, d *host.Device, raw bool) {
	desc := d.Descriptor()
	fmt.Fprintf(out, "Device %d: ID %04x:%04x %s %s\n", d.Address(), d.VendorID(), d.ProductID(), d.Manufacturer(), d.Product())
	fmt.Fprintf(out, "  bcdUSB          %x.%02x\n", desc.USBVersion>>8, desc.USBVersion&0xFF)
	fmt.Fprintf(out, "  bMaxPacketSize0 %d\n", desc.MaxPacketSize0)
	fmt.Fprintf(out, "  bcdDevice       %x.%02x\n", desc.DeviceVersion>>8, desc.DeviceVersion&0xFF)
	fmt.Fprintf(out, "  iSerial         %d %s\n", desc.SerialNumberIndex, d.SerialNumber())
	fmt.Fprintf(out, "  State           %s\n", d.State())

	cfg := d.Configuration()
	fmt.Fprintf(out, "  Configuration %d: %d bytes, %d interfaces, %d mA\n",
		cfg.ConfigurationValue, cfg.TotalLength, cfg.NumInterfaces, 2*int(cfg.MaxPower))
	for _, iface := range d.Interfaces() {
		fmt.Fprintf(out, "    Interface %d: class %02x subclass %02x protocol %02x, %d endpoints\n",
			iface.InterfaceNumber, iface.InterfaceClass, iface.InterfaceSubClass,
			iface.InterfaceProtocol, iface.NumEndpoints)
		if hd, ok := d.HID(iface.InterfaceNumber); ok {
			fmt.Fprintf(out, "      HID %x.%02x country %d report descriptor %d bytes\n",
				hd.HIDVersion>>8, hd.HIDVersion&0xFF, hd.CountryCode, hd.ReportLength)
			if raw {
				fmt.Fprintf(out, "      % x\n", d.ReportDescriptor(iface.InterfaceNumber))
			}
		}
	}
	for _, ep := range d.Endpoints() {
		fmt.Fprintf(out, "    Endpoint %02x: attributes %02x, %d bytes every %d ms\n",
			ep.EndpointAddress, ep.Attributes, ep.MaxPacketSize, ep.Interval)
	}
	if raw {
		fmt.Fprintf(out, "  Raw configuration\n    % x\n", d.RawConfiguration())
	}
}

package host

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ardnew/bitusb/device"
	"github.com/ardnew/bitusb/host/hal"
	"github.com/ardnew/bitusb/pkg"
)

// Enumeration errors.
var (
	ErrEnumerationFailed = errors.New("enumeration failed")
	ErrNoAddress         = errors.New("no address available")
)

// Enumerate resets the bus, walks the device through the standard sequence
// and leaves it configured at addr:
//
//  1. the first 8 bytes of the device descriptor at address 0
//  2. SET_ADDRESS
//  3. the full device descriptor
//  4. the configuration header, then the full configuration
//  5. the string descriptors named by the device descriptor
//  6. the report descriptor of every HID interface
//  7. SET_CONFIGURATION
func (h *Host) Enumerate(ctx context.Context, addr uint8) (*Device, error) {
	if !hal.DeviceAddress(addr).Valid() {
		return nil, fmt.Errorf("address %d: %w", addr, ErrNoAddress)
	}
	h.BusReset()
	dev := &Device{host: h, state: DeviceStateDefault}
	var buf [MaxDescriptorSize]byte

	pkg.LogDebug(pkg.ComponentHost, "starting enumeration", "address", addr)

	n, err := h.GetDescriptor(ctx, 0, device.DescriptorTypeDevice, 0, 0, buf[:8])
	if err != nil {
		return nil, fmt.Errorf("%w: device descriptor: %w", ErrEnumerationFailed, err)
	}
	if n < 8 {
		return nil, fmt.Errorf("%w: device descriptor header of %d bytes", ErrEnumerationFailed, n)
	}
	pkg.LogDebug(pkg.ComponentHost, "got max packet size", "size", buf[7])

	if err := h.SetAddress(ctx, 0, addr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnumerationFailed, err)
	}
	dev.address = addr
	dev.state = DeviceStateAddress

	n, err = h.GetDescriptor(ctx, addr, device.DescriptorTypeDevice, 0, 0, buf[:device.DeviceDescriptorSize])
	if err != nil {
		return nil, fmt.Errorf("%w: device descriptor: %w", ErrEnumerationFailed, err)
	}
	if err := device.ParseDeviceDescriptor(buf[:n], &dev.descriptor); err != nil {
		return nil, fmt.Errorf("%w: device descriptor: %w", ErrEnumerationFailed, err)
	}
	pkg.LogDebug(pkg.ComponentHost, "device descriptor",
		"vendorID", dev.descriptor.VendorID,
		"productID", dev.descriptor.ProductID)

	n, err = h.GetDescriptor(ctx, addr, device.DescriptorTypeConfiguration, 0, 0, buf[:device.ConfigurationDescriptorSize])
	if err != nil {
		return nil, fmt.Errorf("%w: configuration header: %w", ErrEnumerationFailed, err)
	}
	if n < device.ConfigurationDescriptorSize {
		return nil, fmt.Errorf("%w: configuration header of %d bytes", ErrEnumerationFailed, n)
	}
	total := int(binary.LittleEndian.Uint16(buf[2:]))
	if total > len(buf) {
		total = len(buf)
	}
	n, err = h.GetDescriptor(ctx, addr, device.DescriptorTypeConfiguration, 0, 0, buf[:total])
	if err != nil {
		return nil, fmt.Errorf("%w: configuration: %w", ErrEnumerationFailed, err)
	}
	if err := dev.parseConfigurationTree(buf[:n]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnumerationFailed, err)
	}
	pkg.LogDebug(pkg.ComponentHost, "configuration descriptor",
		"numInterfaces", dev.config.NumInterfaces,
		"configValue", dev.config.ConfigurationValue)

	// Strings are informational; a device without them still enumerates.
	if err := h.readStringDescriptors(ctx, dev); err != nil {
		pkg.LogDebug(pkg.ComponentHost, "string descriptor read failed", "error", err)
	}

	for i := range dev.interfaces {
		iface := dev.interfaces[i].InterfaceNumber
		hd, ok := dev.HID(iface)
		if !ok {
			continue
		}
		length := int(hd.ReportLength)
		if length > len(buf) {
			length = len(buf)
		}
		n, err := h.GetInterfaceDescriptor(ctx, addr, device.DescriptorTypeHIDReport, iface, buf[:length])
		if err != nil {
			return nil, fmt.Errorf("%w: report descriptor %d: %w", ErrEnumerationFailed, iface, err)
		}
		dev.reports[iface] = append([]byte(nil), buf[:n]...)
		if n != int(hd.ReportLength) {
			pkg.LogWarn(pkg.ComponentHost, "short report descriptor",
				"interface", iface, "declared", hd.ReportLength, "read", n)
		}
	}

	if dev.config.ConfigurationValue > 0 {
		if err := h.SetConfiguration(ctx, addr, dev.config.ConfigurationValue); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEnumerationFailed, err)
		}
		dev.state = DeviceStateConfigured
	}

	pkg.LogInfo(pkg.ComponentHost, "device enumerated",
		"address", addr,
		"vendor", dev.descriptor.VendorID,
		"product", dev.Product())
	return dev, nil
}

// readStringDescriptors reads and caches the manufacturer, product and
// serial strings.
func (h *Host) readStringDescriptors(ctx context.Context, dev *Device) error {
	var lang [4]byte
	n, err := h.GetDescriptor(ctx, dev.address, device.DescriptorTypeString, 0, 0, lang[:])
	if err != nil {
		return fmt.Errorf("language table: %w", err)
	}
	if n < 4 || binary.LittleEndian.Uint16(lang[2:]) != device.LangIDUSEnglish {
		return fmt.Errorf("language table: %w", pkg.ErrInvalidRequest)
	}

	var errs []error
	for _, index := range []uint8{
		dev.descriptor.ManufacturerIndex,
		dev.descriptor.ProductIndex,
		dev.descriptor.SerialNumberIndex,
	} {
		if index == 0 || int(index) >= len(dev.strings) {
			continue
		}
		s, err := h.GetStringDescriptor(ctx, dev.address, index)
		if err != nil {
			errs = append(errs, fmt.Errorf("string %d: %w", index, err))
			continue
		}
		dev.strings[index] = s
		pkg.LogDebug(pkg.ComponentHost, "string descriptor", "index", index, "value", s)
	}
	return errors.Join(errs...)
}

// EnterBootloader sends the two-stage bootloader request: a feature
// SET_REPORT whose data stage carries the boot cookie. The device answers
// the status stage and then leaves the running system.
func (h *Host) EnterBootloader(ctx context.Context, addr uint8) error {
	sel := device.BootSelector
	if err := h.SetReport(ctx, addr, uint8(sel.WIndex()), sel.Type(), sel.Index(), device.BootCookie[:]); err != nil {
		return fmt.Errorf("bootloader request: %w", err)
	}
	pkg.LogInfo(pkg.ComponentHost, "bootloader requested", "address", addr)
	return nil
}

// EnterBootloader sends the bootloader request to d and marks it halted.
func (d *Device) EnterBootloader(ctx context.Context) error {
	if err := d.host.EnterBootloader(ctx, d.address); err != nil {
		return err
	}
	d.state = DeviceStateHalted
	return nil
}

package host

import (
	"context"
	"fmt"

	"github.com/ardnew/bitusb/device"
	"github.com/ardnew/bitusb/host/hal"
)

// Device is the host's view of an enumerated device: its address and the
// descriptors read during enumeration.
type Device struct {
	host    *Host
	address uint8
	state   DeviceState

	descriptor device.DeviceDescriptor
	config     device.ConfigurationDescriptor
	rawConfig  []byte

	// Interface and endpoint descriptors of the current configuration.
	interfaces []device.InterfaceDescriptor
	endpoints  []device.EndpointDescriptor

	// HID class and report descriptors, indexed by interface number.
	hid     [MaxInterfaces]HIDDescriptor
	hasHID  [MaxInterfaces]bool
	reports [MaxInterfaces][]byte

	// String descriptors cache, indexed by string index.
	strings [MaxStringsPerDevice]string
}

// Address returns the device address.
func (d *Device) Address() uint8 {
	return d.address
}

// Speed returns the device speed, which is always low speed on this bus.
func (d *Device) Speed() hal.Speed {
	return hal.SpeedLow
}

// State returns the device state as last observed by the host.
func (d *Device) State() DeviceState {
	return d.state
}

// VendorID returns the device vendor ID.
func (d *Device) VendorID() uint16 {
	return d.descriptor.VendorID
}

// ProductID returns the device product ID.
func (d *Device) ProductID() uint16 {
	return d.descriptor.ProductID
}

// Descriptor returns the device descriptor.
func (d *Device) Descriptor() device.DeviceDescriptor {
	return d.descriptor
}

// Configuration returns the configuration descriptor header.
func (d *Device) Configuration() device.ConfigurationDescriptor {
	return d.config
}

// RawConfiguration returns the complete configuration descriptor as read.
func (d *Device) RawConfiguration() []byte {
	return d.rawConfig
}

// Interfaces returns the interface descriptors for the current configuration.
// The returned slice references internal storage; do not modify.
func (d *Device) Interfaces() []device.InterfaceDescriptor {
	return d.interfaces
}

// Endpoints returns the endpoint descriptors for the current configuration.
// The returned slice references internal storage; do not modify.
func (d *Device) Endpoints() []device.EndpointDescriptor {
	return d.endpoints
}

// HID returns the HID class descriptor of an interface.
func (d *Device) HID(iface uint8) (HIDDescriptor, bool) {
	if int(iface) >= MaxInterfaces {
		return HIDDescriptor{}, false
	}
	return d.hid[iface], d.hasHID[iface]
}

// ReportDescriptor returns the report descriptor read for a HID interface.
func (d *Device) ReportDescriptor(iface uint8) []byte {
	if int(iface) >= MaxInterfaces {
		return nil
	}
	return d.reports[iface]
}

// String returns a cached string descriptor.
func (d *Device) String(index uint8) string {
	if int(index) >= len(d.strings) {
		return ""
	}
	return d.strings[index]
}

// Manufacturer returns the manufacturer string.
func (d *Device) Manufacturer() string {
	return d.String(d.descriptor.ManufacturerIndex)
}

// Product returns the product string.
func (d *Device) Product() string {
	return d.String(d.descriptor.ProductIndex)
}

// SerialNumber returns the serial number string.
func (d *Device) SerialNumber() string {
	return d.String(d.descriptor.SerialNumberIndex)
}

// InterruptIn polls an interrupt IN endpoint of the device once.
func (d *Device) InterruptIn(ctx context.Context, endp uint8, buf []byte) (int, error) {
	return d.host.InterruptIn(ctx, d.address, endp, buf)
}

// SetReport sends a HID SET_REPORT to an interface of the device.
func (d *Device) SetReport(ctx context.Context, iface, reportType, reportID uint8, data []byte) error {
	return d.host.SetReport(ctx, d.address, iface, reportType, reportID, data)
}

// InEndpoints returns the numbers of the interrupt IN endpoints.
func (d *Device) InEndpoints() []uint8 {
	var out []uint8
	for i := range d.endpoints {
		ep := &d.endpoints[i]
		if ep.EndpointAddress&device.EndpointDirectionIn != 0 &&
			ep.Attributes&0x03 == device.EndpointTypeInterrupt {
			out = append(out, ep.EndpointAddress&0x0F)
		}
	}
	return out
}

// parseConfigurationTree parses the full configuration descriptor tree.
func (d *Device) parseConfigurationTree(data []byte) error {
	if err := device.ParseConfigurationDescriptor(data, &d.config); err != nil {
		return fmt.Errorf("configuration descriptor: %w", err)
	}
	d.rawConfig = append([]byte(nil), data...)
	d.interfaces = make([]device.InterfaceDescriptor, 0, d.config.NumInterfaces)
	d.endpoints = d.endpoints[:0]

	offset := device.ConfigurationDescriptorSize
	current := -1
	for offset+2 <= len(data) && offset < int(d.config.TotalLength) {
		length := int(data[offset])
		descType := data[offset+1]
		if length < 2 || offset+length > len(data) {
			break
		}

		switch descType {
		case device.DescriptorTypeInterface:
			var iface device.InterfaceDescriptor
			if err := device.ParseInterfaceDescriptor(data[offset:], &iface); err != nil {
				return fmt.Errorf("interface descriptor at %d: %w", offset, err)
			}
			d.interfaces = append(d.interfaces, iface)
			current = int(iface.InterfaceNumber)

		case device.DescriptorTypeEndpoint:
			var ep device.EndpointDescriptor
			if err := device.ParseEndpointDescriptor(data[offset:], &ep); err != nil {
				return fmt.Errorf("endpoint descriptor at %d: %w", offset, err)
			}
			d.endpoints = append(d.endpoints, ep)

		case device.DescriptorTypeHID:
			if current >= 0 && current < MaxInterfaces {
				if err := ParseHIDDescriptor(data[offset:offset+length], &d.hid[current]); err != nil {
					return fmt.Errorf("HID descriptor at %d: %w", offset, err)
				}
				d.hasHID[current] = true
			}
		}
		offset += length
	}
	return nil
}

package host

import (
	"encoding/binary"

	"github.com/ardnew/bitusb/device"
	"github.com/ardnew/bitusb/pkg"
)

// Host limits.
const (
	// DefaultRetries is the number of times a transaction is repeated after
	// a retryable failure before the host gives up.
	DefaultRetries = 3

	// MaxDescriptorSize bounds every descriptor read during enumeration.
	MaxDescriptorSize = 255

	// MaxStringsPerDevice bounds the cached string descriptors.
	MaxStringsPerDevice = 8

	// MaxInterfaces bounds the interfaces parsed from a configuration.
	MaxInterfaces = 4
)

// DeviceState is the host view of a device's USB state.
type DeviceState uint8

// Device states.
const (
	DeviceStateDefault DeviceState = iota
	DeviceStateAddress
	DeviceStateConfigured
	DeviceStateHalted
)

// String returns the state name.
func (s DeviceState) String() string {
	switch s {
	case DeviceStateDefault:
		return "default"
	case DeviceStateAddress:
		return "address"
	case DeviceStateConfigured:
		return "configured"
	case DeviceStateHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// HIDDescriptor is the parsed HID class descriptor (type 0x21) that follows
// a HID interface descriptor.
type HIDDescriptor struct {
	HIDVersion     uint16
	CountryCode    uint8
	NumDescriptors uint8
	ReportType     uint8
	ReportLength   uint16
}

// HIDDescriptorSize is the size of a HID descriptor with one report.
const HIDDescriptorSize = 9

// ParseHIDDescriptor parses a HID class descriptor.
func ParseHIDDescriptor(data []byte, out *HIDDescriptor) error {
	if len(data) < HIDDescriptorSize {
		return pkg.ErrDescriptorTooShort
	}
	if data[1] != device.DescriptorTypeHID {
		return pkg.ErrDescriptorTypeMismatch
	}
	out.HIDVersion = binary.LittleEndian.Uint16(data[2:])
	out.CountryCode = data[4]
	out.NumDescriptors = data[5]
	out.ReportType = data[6]
	out.ReportLength = binary.LittleEndian.Uint16(data[7:])
	return nil
}

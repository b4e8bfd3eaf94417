package device

import (
	"encoding/binary"
	"fmt"

	"github.com/ardnew/bitusb/pkg"
)

// Standard USB request codes (USB 2.0 Spec Table 9-4).
const (
	RequestGetStatus        = 0x00
	RequestClearFeature     = 0x01
	RequestSetFeature       = 0x03
	RequestSetAddress       = 0x05
	RequestGetDescriptor    = 0x06
	RequestSetDescriptor    = 0x07
	RequestGetConfiguration = 0x08
	RequestSetConfiguration = 0x09
	RequestGetInterface     = 0x0A
	RequestSetInterface     = 0x0B
	RequestSynchFrame       = 0x0C
)

// HID class request codes (HID 1.11 Section 7.2).
const (
	RequestHIDGetReport = 0x01
	RequestHIDSetIdle   = 0x0A
	RequestHIDSetReport = 0x09
)

// RequestKey combines bmRequestType and bRequest with the low recipient bit
// dropped, so device and interface recipients map to the same key.
type RequestKey uint16

// Request keys recognised by the control state machine.
const (
	KeyGetDescriptor RequestKey = 0x0680 >> 1
	KeySetAddress    RequestKey = 0x0500 >> 1
	KeyHIDSetReport  RequestKey = 0x0921 >> 1
)

// Request type masks (USB 2.0 Spec Table 9-2).
const (
	RequestTypeDirectionMask = 0x80 // Direction bit mask
	RequestTypeTypeMask      = 0x60 // Type bits mask
	RequestTypeRecipientMask = 0x1F // Recipient bits mask
)

// Request type direction values.
const (
	RequestDirectionHostToDevice = 0x00 // Host to device
	RequestDirectionDeviceToHost = 0x80 // Device to host
)

// Request type values.
const (
	RequestTypeStandard = 0x00 // Standard request
	RequestTypeClass    = 0x20 // Class-specific request
	RequestTypeVendor   = 0x40 // Vendor-specific request
)

// Request recipient values.
const (
	RequestRecipientDevice    = 0x00 // Device recipient
	RequestRecipientInterface = 0x01 // Interface recipient
	RequestRecipientEndpoint  = 0x02 // Endpoint recipient
	RequestRecipientOther     = 0x03 // Other recipient
)

// SetupPacket represents an 8-byte USB SETUP packet.
type SetupPacket struct {
	RequestType uint8  // bmRequestType: direction, type, recipient
	Request     uint8  // bRequest: specific request code
	Value       uint16 // wValue: request-specific parameter
	Index       uint16 // wIndex: request-specific index
	Length      uint16 // wLength: number of bytes to transfer
}

// SetupPacketSize is the size of a USB SETUP packet in bytes.
const SetupPacketSize = 8

// ParseSetupPacket parses a setup packet from 8 bytes into out.
// Returns an error if the data is too short.
func ParseSetupPacket(data []byte, out *SetupPacket) error {
	if len(data) < SetupPacketSize {
		return pkg.ErrSetupPacketTooShort
	}
	out.RequestType = data[0]
	out.Request = data[1]
	out.Value = binary.LittleEndian.Uint16(data[2:4])
	out.Index = binary.LittleEndian.Uint16(data[4:6])
	out.Length = binary.LittleEndian.Uint16(data[6:8])
	return nil
}

// MarshalTo serializes the setup packet to buf.
// Returns the number of bytes written (always 8 if buf is large enough).
func (s *SetupPacket) MarshalTo(buf []byte) int {
	if len(buf) < SetupPacketSize {
		return 0
	}
	buf[0] = s.RequestType
	buf[1] = s.Request
	binary.LittleEndian.PutUint16(buf[2:4], s.Value)
	binary.LittleEndian.PutUint16(buf[4:6], s.Index)
	binary.LittleEndian.PutUint16(buf[6:8], s.Length)
	return SetupPacketSize
}

// Key returns the request key used for dispatch.
func (s *SetupPacket) Key() RequestKey {
	return RequestKey((uint16(s.RequestType) | uint16(s.Request)<<8) >> 1)
}

// Selector returns wValue and wIndex as a descriptor selector.
func (s *SetupPacket) Selector() Selector {
	return Selector(uint32(s.Value) | uint32(s.Index)<<16)
}

// Direction returns the transfer direction.
func (s *SetupPacket) Direction() uint8 {
	return s.RequestType & RequestTypeDirectionMask
}

// IsDeviceToHost returns true if this is a device-to-host transfer.
func (s *SetupPacket) IsDeviceToHost() bool {
	return s.Direction() == RequestDirectionDeviceToHost
}

// Type returns the request type (Standard, Class, or Vendor).
func (s *SetupPacket) Type() uint8 {
	return s.RequestType & RequestTypeTypeMask
}

// IsStandard returns true if this is a standard request.
func (s *SetupPacket) IsStandard() bool {
	return s.Type() == RequestTypeStandard
}

// IsClass returns true if this is a class-specific request.
func (s *SetupPacket) IsClass() bool {
	return s.Type() == RequestTypeClass
}

// IsVendor returns true if this is a vendor-specific request.
func (s *SetupPacket) IsVendor() bool {
	return s.Type() == RequestTypeVendor
}

// Recipient returns the request recipient.
func (s *SetupPacket) Recipient() uint8 {
	return s.RequestType & RequestTypeRecipientMask
}

// IsInterfaceRecipient returns true if the recipient is an interface.
func (s *SetupPacket) IsInterfaceRecipient() bool {
	return s.Recipient() == RequestRecipientInterface
}

// DescriptorType returns the descriptor type from wValue high byte.
func (s *SetupPacket) DescriptorType() uint8 {
	return uint8(s.Value >> 8)
}

// DescriptorIndex returns the descriptor index from wValue low byte.
func (s *SetupPacket) DescriptorIndex() uint8 {
	return uint8(s.Value & 0xFF)
}

// InterfaceNumber returns the interface number from wIndex.
func (s *SetupPacket) InterfaceNumber() uint8 {
	return uint8(s.Index & 0xFF)
}

// requestNames labels the requests the control state machine and the host
// issue.
var requestNames = map[RequestKey]string{
	KeyGetDescriptor: "GET_DESCRIPTOR",
	KeySetAddress:    "SET_ADDRESS",
	KeyHIDSetReport:  "SET_REPORT",
	0x0900 >> 1:      "SET_CONFIGURATION",
}

// String returns the request name, or its raw bmRequestType and bRequest,
// followed by the selector and wLength.
func (s *SetupPacket) String() string {
	name, ok := requestNames[s.Key()]
	if !ok {
		name = fmt.Sprintf("%02x:%02x", s.RequestType, s.Request)
	}
	return fmt.Sprintf("%s %s len=%d", name, s.Selector(), s.Length)
}

// fill overwrites every field of s.
func (s *SetupPacket) fill(requestType, request uint8, value, index, length uint16) {
	*s = SetupPacket{
		RequestType: requestType,
		Request:     request,
		Value:       value,
		Index:       index,
		Length:      length,
	}
}

const (
	standardIn  = RequestDirectionDeviceToHost | RequestTypeStandard
	standardOut = RequestDirectionHostToDevice | RequestTypeStandard
)

// GetDescriptorSetup initializes out as a GET_DESCRIPTOR setup packet.
func GetDescriptorSetup(out *SetupPacket, descType, descIndex uint8, length uint16) {
	out.fill(standardIn|RequestRecipientDevice, RequestGetDescriptor,
		uint16(descType)<<8|uint16(descIndex), 0, length)
}

// GetStringDescriptorSetup initializes out as a GET_DESCRIPTOR(STRING)
// setup packet for the given index and language.
func GetStringDescriptorSetup(out *SetupPacket, index uint8, langID uint16, length uint16) {
	out.fill(standardIn|RequestRecipientDevice, RequestGetDescriptor,
		uint16(DescriptorTypeString)<<8|uint16(index), langID, length)
}

// GetInterfaceDescriptorSetup initializes out as an interface-recipient
// GET_DESCRIPTOR setup packet, used for HID class and report descriptors.
func GetInterfaceDescriptorSetup(out *SetupPacket, descType uint8, iface uint8, length uint16) {
	out.fill(standardIn|RequestRecipientInterface, RequestGetDescriptor,
		uint16(descType)<<8, uint16(iface), length)
}

// GetSetAddressSetup initializes out as a SET_ADDRESS setup packet.
func GetSetAddressSetup(out *SetupPacket, address uint8) {
	out.fill(standardOut|RequestRecipientDevice, RequestSetAddress, uint16(address), 0, 0)
}

// GetSetConfigurationSetup initializes out as a SET_CONFIGURATION setup packet.
func GetSetConfigurationSetup(out *SetupPacket, config uint8) {
	out.fill(standardOut|RequestRecipientDevice, RequestSetConfiguration, uint16(config), 0, 0)
}

// HID report types carried in the high byte of wValue.
const (
	ReportTypeInput   = 0x01
	ReportTypeOutput  = 0x02
	ReportTypeFeature = 0x03
)

// GetSetReportSetup initializes out as a HID SET_REPORT setup packet.
func GetSetReportSetup(out *SetupPacket, reportType, reportID uint8, iface uint8, length uint16) {
	out.fill(RequestDirectionHostToDevice|RequestTypeClass|RequestRecipientInterface,
		RequestHIDSetReport, uint16(reportType)<<8|uint16(reportID), uint16(iface), length)
}

package hid

import (
	"fmt"

	"github.com/ardnew/bitusb/device"
	"github.com/ardnew/bitusb/pkg"
)

// Composite device identity defaults (pid.codes test PID).
const (
	DefaultVendorID     = 0x1209
	DefaultProductID    = 0xC003
	DefaultDeviceBCD    = 0x0002
	DefaultManufacturer = "ardnew"
	DefaultProduct      = "bitusb HID"
	DefaultSerial       = "000"

	// ErrorProduct replaces the product string when a report descriptor
	// does not encode to its declared length.
	ErrorProduct = "ERR"
)

// String descriptor indices.
const (
	StringManufacturer = 1
	StringProduct      = 2
	StringSerial       = 3
)

// Interface numbers and endpoint addresses of the composite device.
const (
	InterfaceMouse    = 0
	InterfaceKeyboard = 1

	EndpointMouse    = 1
	EndpointKeyboard = 2

	// PollInterval is the interrupt endpoint bInterval in milliseconds.
	PollInterval = 10

	// MaxPower is bMaxPower in 2 mA units.
	MaxPower = 0x64
)

// ConfigurationLength is wTotalLength of the composite configuration.
const ConfigurationLength = device.ConfigurationDescriptorSize +
	2*(device.InterfaceDescriptorSize+HIDDescriptorSize+device.EndpointDescriptorSize)

// Options selects the identity and report descriptors of a composite device.
// Zero values select the defaults.
type Options struct {
	VendorID     uint16 `yaml:"vendor_id" json:"vendorId"`
	ProductID    uint16 `yaml:"product_id" json:"productId"`
	Manufacturer string `yaml:"manufacturer" json:"manufacturer"`
	Product      string `yaml:"product" json:"product"`
	Serial       string `yaml:"serial" json:"serial"`

	MouseReport    *Report `yaml:"-" json:"-"`
	KeyboardReport *Report `yaml:"-" json:"-"`
}

// Descriptors holds the descriptor data of the composite mouse+keyboard
// device and implements [device.DescriptorLookup]. All storage is allocated
// at construction; lookups only return slices of it.
type Descriptors struct {
	table device.DescriptorTable

	dev      [device.DeviceDescriptorSize]byte
	config   [ConfigurationLength]byte
	mouse    []byte
	keyboard []byte
	lang     [4]byte
	strings  [3][]byte

	selfCheck bool
}

// NewDescriptors encodes the composite descriptor set. A report descriptor
// whose encoded length differs from its declared length does not fail
// construction: the product string becomes ErrorProduct so the mismatch is
// visible to the host.
func NewDescriptors(opts Options) (*Descriptors, error) {
	if opts.VendorID == 0 {
		opts.VendorID = DefaultVendorID
	}
	if opts.ProductID == 0 {
		opts.ProductID = DefaultProductID
	}
	if opts.Manufacturer == "" {
		opts.Manufacturer = DefaultManufacturer
	}
	if opts.Product == "" {
		opts.Product = DefaultProduct
	}
	if opts.Serial == "" {
		opts.Serial = DefaultSerial
	}
	if opts.MouseReport == nil {
		opts.MouseReport = &MouseReportDescriptor
	}
	if opts.KeyboardReport == nil {
		opts.KeyboardReport = &KeyboardReportDescriptor
	}

	d := &Descriptors{}
	var err error
	if d.mouse, err = opts.MouseReport.Bytes(); err != nil {
		return nil, fmt.Errorf("mouse report descriptor: %w", err)
	}
	if d.keyboard, err = opts.KeyboardReport.Bytes(); err != nil {
		return nil, fmt.Errorf("keyboard report descriptor: %w", err)
	}

	d.selfCheck = len(d.mouse) == MouseReportDescriptorLength &&
		len(d.keyboard) == KeyboardReportDescriptorLength
	product := opts.Product
	if !d.selfCheck {
		product = ErrorProduct
		pkg.LogWarn(pkg.ComponentHID, "report descriptor length mismatch",
			"mouse", len(d.mouse), "mouseDeclared", MouseReportDescriptorLength,
			"keyboard", len(d.keyboard), "keyboardDeclared", KeyboardReportDescriptorLength)
	}

	dd := device.DeviceDescriptor{
		USBVersion:        0x0110,
		MaxPacketSize0:    device.Endpoint0Size,
		VendorID:          opts.VendorID,
		ProductID:         opts.ProductID,
		DeviceVersion:     DefaultDeviceBCD,
		ManufacturerIndex: StringManufacturer,
		ProductIndex:      StringProduct,
		SerialNumberIndex: StringSerial,
		NumConfigurations: 1,
	}
	dd.MarshalTo(d.dev[:])
	d.marshalConfig()

	device.LanguageDescriptorTo(d.lang[:], device.LangIDUSEnglish)
	for i, s := range []string{opts.Manufacturer, product, opts.Serial} {
		buf := make([]byte, 2+2*len([]rune(s)))
		if device.StringDescriptorTo(buf, s) == 0 {
			return nil, fmt.Errorf("string descriptor %d: %w", i+1, pkg.ErrBufferTooSmall)
		}
		d.strings[i] = buf
	}

	entries := []struct {
		sel  device.Selector
		data []byte
	}{
		{device.NewSelector(device.DescriptorTypeDevice, 0, 0), d.dev[:]},
		{device.NewSelector(device.DescriptorTypeConfiguration, 0, 0), d.config[:]},
		{device.NewSelector(device.DescriptorTypeHIDReport, 0, InterfaceMouse), d.mouse},
		{device.NewSelector(device.DescriptorTypeHIDReport, 0, InterfaceKeyboard), d.keyboard},
		{device.NewSelector(device.DescriptorTypeHID, 0, InterfaceMouse), d.classDescriptor(InterfaceMouse)},
		{device.NewSelector(device.DescriptorTypeHID, 0, InterfaceKeyboard), d.classDescriptor(InterfaceKeyboard)},
		{device.NewSelector(device.DescriptorTypeString, 0, 0), d.lang[:]},
		{device.NewSelector(device.DescriptorTypeString, StringManufacturer, device.LangIDUSEnglish), d.strings[0]},
		{device.NewSelector(device.DescriptorTypeString, StringProduct, device.LangIDUSEnglish), d.strings[1]},
		{device.NewSelector(device.DescriptorTypeString, StringSerial, device.LangIDUSEnglish), d.strings[2]},
	}
	for _, e := range entries {
		if err := d.table.Add(e.sel, e.data); err != nil {
			return nil, fmt.Errorf("descriptor %s: %w", e.sel, err)
		}
	}

	pkg.LogDebug(pkg.ComponentHID, "descriptors built",
		"entries", d.table.Len(), "selfCheck", d.selfCheck)
	return d, nil
}

// marshalConfig writes the configuration descriptor with both HID
// interfaces. The class descriptors carry the declared report lengths.
func (d *Descriptors) marshalConfig() {
	buf := d.config[:]
	cd := device.ConfigurationDescriptor{
		TotalLength:        ConfigurationLength,
		NumInterfaces:      2,
		ConfigurationValue: 1,
		Attributes:         device.ConfigAttrBusPowered,
		MaxPower:           MaxPower,
	}
	n := cd.MarshalTo(buf)

	ifaces := []struct {
		num, protocol, endp uint8
		reportLen           uint16
		packetSize          uint16
	}{
		{InterfaceMouse, ProtocolMouse, EndpointMouse, MouseReportDescriptorLength, MouseReportSize},
		{InterfaceKeyboard, ProtocolKeyboard, EndpointKeyboard, KeyboardReportDescriptorLength, KeyboardReportSize},
	}
	for _, it := range ifaces {
		id := device.InterfaceDescriptor{
			InterfaceNumber:   it.num,
			NumEndpoints:      1,
			InterfaceClass:    device.ClassHID,
			InterfaceSubClass: SubclassBoot,
			InterfaceProtocol: it.protocol,
		}
		n += id.MarshalTo(buf[n:])
		hd := HIDDescriptor{
			HIDVersion:     HIDVersion,
			CountryCode:    CountryNone,
			NumDescriptors: 1,
			ReportDescLen:  it.reportLen,
		}
		n += hd.MarshalTo(buf[n:])
		ed := device.EndpointDescriptor{
			EndpointAddress: device.EndpointDirectionIn | it.endp,
			Attributes:      device.EndpointTypeInterrupt,
			MaxPacketSize:   it.packetSize,
			Interval:        PollInterval,
		}
		n += ed.MarshalTo(buf[n:])
	}
}

// classDescriptor returns the HID descriptor of an interface as a slice of
// the configuration descriptor.
func (d *Descriptors) classDescriptor(iface int) []byte {
	off := device.ConfigurationDescriptorSize +
		iface*(device.InterfaceDescriptorSize+HIDDescriptorSize+device.EndpointDescriptorSize) +
		device.InterfaceDescriptorSize
	return d.config[off : off+HIDDescriptorSize]
}

// Descriptor implements [device.DescriptorLookup].
func (d *Descriptors) Descriptor(sel device.Selector) []byte {
	return d.table.Descriptor(sel)
}

// SelfCheck reports whether both report descriptors matched their declared
// lengths.
func (d *Descriptors) SelfCheck() bool {
	return d.selfCheck
}

// Selectors returns every selector served, in registration order.
func (d *Descriptors) Selectors() []device.Selector {
	return d.table.Selectors()
}

package device

import (
	"bytes"
	"testing"

	"github.com/ardnew/bitusb/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceDescriptor(t *testing.T) {
	desc := DeviceDescriptor{
		USBVersion:        0x0110,
		MaxPacketSize0:    Endpoint0Size,
		VendorID:          0x1209,
		ProductID:         0xC003,
		DeviceVersion:     0x0002,
		ManufacturerIndex: 1,
		ProductIndex:      2,
		SerialNumberIndex: 3,
		NumConfigurations: 1,
	}
	var buf [DeviceDescriptorSize]byte
	require.Equal(t, DeviceDescriptorSize, desc.MarshalTo(buf[:]))
	assert.Equal(t, []byte{
		0x12, 0x01, 0x10, 0x01, 0x00, 0x00, 0x00, 0x08,
		0x09, 0x12, 0x03, 0xC0, 0x02, 0x00, 0x01, 0x02,
		0x03, 0x01,
	}, buf[:])

	var got DeviceDescriptor
	require.NoError(t, ParseDeviceDescriptor(buf[:], &got))
	desc.Length, desc.DescriptorType = DeviceDescriptorSize, DescriptorTypeDevice
	assert.Equal(t, desc, got)

	assert.Zero(t, desc.MarshalTo(buf[:10]))
	assert.ErrorIs(t, ParseDeviceDescriptor(buf[:10], &got), pkg.ErrDescriptorTooShort)
	buf[1] = DescriptorTypeConfiguration
	assert.ErrorIs(t, ParseDeviceDescriptor(buf[:], &got), pkg.ErrDescriptorTypeMismatch)
}

func TestConfigurationDescriptor(t *testing.T) {
	desc := ConfigurationDescriptor{
		TotalLength:        59,
		NumInterfaces:      2,
		ConfigurationValue: 1,
		Attributes:         ConfigAttrBusPowered,
		MaxPower:           50,
	}
	var buf [ConfigurationDescriptorSize]byte
	require.Equal(t, ConfigurationDescriptorSize, desc.MarshalTo(buf[:]))
	assert.Equal(t, []byte{0x09, 0x02, 0x3B, 0x00, 0x02, 0x01, 0x00, 0x80, 0x32}, buf[:])

	var got ConfigurationDescriptor
	require.NoError(t, ParseConfigurationDescriptor(buf[:], &got))
	assert.Equal(t, uint16(59), got.TotalLength)
	assert.Equal(t, uint8(2), got.NumInterfaces)
}

func TestInterfaceAndEndpointDescriptors(t *testing.T) {
	iface := InterfaceDescriptor{
		InterfaceNumber:   1,
		NumEndpoints:      1,
		InterfaceClass:    ClassHID,
		InterfaceSubClass: 1,
		InterfaceProtocol: 1,
	}
	var buf [InterfaceDescriptorSize + EndpointDescriptorSize]byte
	n := iface.MarshalTo(buf[:])
	require.Equal(t, InterfaceDescriptorSize, n)

	ep := EndpointDescriptor{
		EndpointAddress: EndpointDirectionIn | 2,
		Attributes:      EndpointTypeInterrupt,
		MaxPacketSize:   8,
		Interval:        10,
	}
	require.Equal(t, EndpointDescriptorSize, ep.MarshalTo(buf[n:]))
	assert.Equal(t, []byte{
		0x09, 0x04, 0x01, 0x00, 0x01, 0x03, 0x01, 0x01, 0x00,
		0x07, 0x05, 0x82, 0x03, 0x08, 0x00, 0x0A,
	}, buf[:])

	var gi InterfaceDescriptor
	require.NoError(t, ParseInterfaceDescriptor(buf[:], &gi))
	assert.Equal(t, uint8(ClassHID), gi.InterfaceClass)
	var ge EndpointDescriptor
	require.NoError(t, ParseEndpointDescriptor(buf[n:], &ge))
	assert.Equal(t, uint8(0x82), ge.EndpointAddress)
	assert.ErrorIs(t, ParseEndpointDescriptor(buf[:], &ge), pkg.ErrDescriptorTypeMismatch)
}

func TestStringDescriptorTo(t *testing.T) {
	tests := []struct {
		input string
		want  []byte
	}{
		{"", []byte{0x02, 0x03}},
		{"000", []byte{0x08, 0x03, '0', 0, '0', 0, '0', 0}},
		{"ERR", []byte{0x08, 0x03, 'E', 0, 'R', 0, 'R', 0}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var buf [64]byte
			n := StringDescriptorTo(buf[:], tt.input)
			assert.Equal(t, tt.want, buf[:n])

			s, err := ParseStringDescriptor(buf[:n])
			require.NoError(t, err)
			assert.Equal(t, tt.input, s)
		})
	}

	var small [4]byte
	assert.Zero(t, StringDescriptorTo(small[:], "too long"))

	var buf [256]byte
	n := StringDescriptorTo(buf[:], string(bytes.Repeat([]byte{'A'}, 300)))
	assert.LessOrEqual(t, n, 255)
	assert.Equal(t, uint8(n), buf[0])
}

func TestLanguageDescriptorTo(t *testing.T) {
	var buf [6]byte
	n := LanguageDescriptorTo(buf[:], LangIDUSEnglish)
	assert.Equal(t, []byte{0x04, 0x03, 0x09, 0x04}, buf[:n])
	n = LanguageDescriptorTo(buf[:], 0x0409, 0x0407)
	assert.Equal(t, 6, n)
	assert.Zero(t, LanguageDescriptorTo(buf[:3], LangIDUSEnglish))
}

func TestParseStringDescriptorErrors(t *testing.T) {
	_, err := ParseStringDescriptor([]byte{0x04})
	assert.ErrorIs(t, err, pkg.ErrDescriptorTooShort)
	_, err = ParseStringDescriptor([]byte{0x04, 0x01, 0x41, 0x00})
	assert.ErrorIs(t, err, pkg.ErrDescriptorTypeMismatch)
	_, err = ParseStringDescriptor([]byte{0x0A, 0x03, 0x41, 0x00})
	assert.ErrorIs(t, err, pkg.ErrDescriptorTooShort)
}

func TestSelector(t *testing.T) {
	tests := []struct {
		sel    Selector
		typ    uint8
		index  uint8
		wIndex uint16
	}{
		{0x00000100, DescriptorTypeDevice, 0, 0},
		{0x00000200, DescriptorTypeConfiguration, 0, 0},
		{0x00000300, DescriptorTypeString, 0, 0},
		{0x04090302, DescriptorTypeString, 2, LangIDUSEnglish},
		{0x00012200, DescriptorTypeHIDReport, 0, 1},
		{0x00002100, DescriptorTypeHID, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.sel.String(), func(t *testing.T) {
			assert.Equal(t, tt.sel, NewSelector(tt.typ, tt.index, tt.wIndex))
			assert.Equal(t, tt.typ, tt.sel.Type())
			assert.Equal(t, tt.index, tt.sel.Index())
			assert.Equal(t, tt.wIndex, tt.sel.WIndex())
		})
	}
	assert.Equal(t, "0x04090302", Selector(0x04090302).String())
}

func TestDescriptorTable(t *testing.T) {
	var table DescriptorTable
	a, b := []byte{1}, []byte{2}

	require.NoError(t, table.Add(0x0100, a))
	require.NoError(t, table.Add(0x0200, b))
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, a, table.Descriptor(0x0100))
	assert.Nil(t, table.Descriptor(0x0300))

	// Same selector replaces.
	require.NoError(t, table.Add(0x0100, b))
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, b, table.Descriptor(0x0100))
	assert.Equal(t, []Selector{0x0100, 0x0200}, table.Selectors())

	for i := table.Len(); i < MaxDescriptors; i++ {
		require.NoError(t, table.Add(Selector(0x10000+i), a))
	}
	assert.ErrorIs(t, table.Add(0xFFFF, a), pkg.ErrBufferTooSmall)

	var lookup DescriptorLookup = DescriptorFunc(func(sel Selector) []byte {
		if sel.Type() == DescriptorTypeDevice {
			return a
		}
		return nil
	})
	assert.Equal(t, a, lookup.Descriptor(0x0100))
	assert.Nil(t, lookup.Descriptor(0x0200))
}

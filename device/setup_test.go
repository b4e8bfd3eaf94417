package device

import (
	"testing"

	"github.com/ardnew/bitusb/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSetupPacket(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    SetupPacket
		wantErr error
	}{
		{
			name: "GET_DESCRIPTOR device",
			data: []byte{0x80, 0x06, 0x00, 0x01, 0x00, 0x00, 0x40, 0x00},
			want: SetupPacket{RequestType: 0x80, Request: 0x06, Value: 0x0100, Length: 64},
		},
		{
			name: "GET_DESCRIPTOR string",
			data: []byte{0x80, 0x06, 0x02, 0x03, 0x09, 0x04, 0xFF, 0x00},
			want: SetupPacket{RequestType: 0x80, Request: 0x06, Value: 0x0302, Index: 0x0409, Length: 255},
		},
		{
			name: "SET_ADDRESS",
			data: []byte{0x00, 0x05, 0x05, 0x00, 0x00, 0x00, 0x00, 0x00},
			want: SetupPacket{Request: 0x05, Value: 5},
		},
		{
			name: "HID SET_REPORT",
			data: []byte{0x21, 0x09, 0xFD, 0x03, 0x00, 0x00, 0x08, 0x00},
			want: SetupPacket{RequestType: 0x21, Request: 0x09, Value: 0x03FD, Length: 8},
		},
		{
			name:    "too short",
			data:    []byte{0x80, 0x06, 0x00},
			wantErr: pkg.ErrSetupPacketTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got SetupPacket
			err := ParseSetupPacket(tt.data, &got)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			var buf [SetupPacketSize]byte
			require.Equal(t, SetupPacketSize, got.MarshalTo(buf[:]))
			assert.Equal(t, tt.data, buf[:])
		})
	}
}

func TestSetupPacketKey(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		key  RequestKey
		sel  Selector
	}{
		{"get device descriptor", []byte{0x80, 0x06, 0x00, 0x01, 0x00, 0x00, 0x40, 0x00}, KeyGetDescriptor, 0x00000100},
		{"get report descriptor", []byte{0x81, 0x06, 0x00, 0x22, 0x01, 0x00, 0x40, 0x00}, KeyGetDescriptor, 0x00012200},
		{"get string", []byte{0x80, 0x06, 0x01, 0x03, 0x09, 0x04, 0xFF, 0x00}, KeyGetDescriptor, 0x04090301},
		{"set address", []byte{0x00, 0x05, 0x07, 0x00, 0x00, 0x00, 0x00, 0x00}, KeySetAddress, 0x00000007},
		{"set report", []byte{0x21, 0x09, 0xFD, 0x03, 0x00, 0x00, 0x08, 0x00}, KeyHIDSetReport, BootSelector},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s SetupPacket
			require.NoError(t, ParseSetupPacket(tt.data, &s))
			assert.Equal(t, tt.key, s.Key())
			assert.Equal(t, tt.sel, s.Selector())
		})
	}

	// Interface and device recipients share a key.
	dev := SetupPacket{RequestType: 0x80, Request: RequestGetDescriptor}
	iface := SetupPacket{RequestType: 0x81, Request: RequestGetDescriptor}
	assert.Equal(t, dev.Key(), iface.Key())
	other := SetupPacket{RequestType: 0x82, Request: RequestGetDescriptor}
	assert.NotEqual(t, dev.Key(), other.Key())
}

func TestSetupPacketFields(t *testing.T) {
	s := SetupPacket{RequestType: 0xA1, Request: RequestHIDGetReport, Value: 0x0102, Index: 0x0081, Length: 8}
	assert.True(t, s.IsDeviceToHost())
	assert.True(t, s.IsClass())
	assert.False(t, s.IsStandard())
	assert.False(t, s.IsVendor())
	assert.True(t, s.IsInterfaceRecipient())
	assert.Equal(t, uint8(0x01), s.DescriptorType())
	assert.Equal(t, uint8(0x02), s.DescriptorIndex())
	assert.Equal(t, uint8(0x81), s.InterfaceNumber())
	assert.Equal(t, "a1:01 0x00810102 len=8", s.String())

	GetDescriptorSetup(&s, DescriptorTypeDevice, 0, 18)
	assert.Equal(t, "GET_DESCRIPTOR 0x00000100 len=18", s.String())
}

func TestSetupBuilders(t *testing.T) {
	var s SetupPacket

	GetDescriptorSetup(&s, DescriptorTypeConfiguration, 0, 59)
	assert.Equal(t, SetupPacket{RequestType: 0x80, Request: 0x06, Value: 0x0200, Length: 59}, s)

	GetStringDescriptorSetup(&s, 3, LangIDUSEnglish, 255)
	assert.Equal(t, Selector(0x04090303), s.Selector())
	assert.Equal(t, uint16(255), s.Length)

	GetInterfaceDescriptorSetup(&s, DescriptorTypeHIDReport, 1, 63)
	assert.Equal(t, SetupPacket{RequestType: 0x81, Request: 0x06, Value: 0x2200, Index: 1, Length: 63}, s)

	GetSetAddressSetup(&s, 0x2A)
	assert.Equal(t, SetupPacket{Request: RequestSetAddress, Value: 0x2A}, s)

	GetSetConfigurationSetup(&s, 1)
	assert.Equal(t, SetupPacket{Request: RequestSetConfiguration, Value: 1}, s)

	// Builders clear fields left over from the previous request.
	s = SetupPacket{RequestType: 0xFF, Request: 0xFF, Value: 0xFFFF, Index: 0xFFFF, Length: 0xFFFF}
	GetSetAddressSetup(&s, 1)
	assert.Equal(t, SetupPacket{Request: RequestSetAddress, Value: 1}, s)
	assert.Equal(t, "SET_ADDRESS 0x00000001 len=0", s.String())

	GetSetReportSetup(&s, ReportTypeOutput, 0, 1, 1)
	assert.Equal(t, SetupPacket{RequestType: 0x21, Request: 0x09, Value: 0x0200, Index: 1, Length: 1}, s)
	assert.Equal(t, KeyHIDSetReport, s.Key())
}

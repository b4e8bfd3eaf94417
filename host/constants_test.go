package host

import (
	"testing"

	"github.com/ardnew/bitusb/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceStateString(t *testing.T) {
	tests := []struct {
		state DeviceState
		want  string
	}{
		{DeviceStateDefault, "default"},
		{DeviceStateAddress, "address"},
		{DeviceStateConfigured, "configured"},
		{DeviceStateHalted, "halted"},
		{DeviceState(99), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

func TestParseHIDDescriptor(t *testing.T) {
	var hd HIDDescriptor
	err := ParseHIDDescriptor([]byte{0x09, 0x21, 0x10, 0x01, 0x00, 0x01, 0x22, 0x34, 0x00}, &hd)
	require.NoError(t, err)
	assert.Equal(t, HIDDescriptor{
		HIDVersion:     0x0110,
		NumDescriptors: 1,
		ReportType:     0x22,
		ReportLength:   52,
	}, hd)

	assert.ErrorIs(t, ParseHIDDescriptor([]byte{0x09, 0x21}, &hd), pkg.ErrDescriptorTooShort)
	assert.ErrorIs(t, ParseHIDDescriptor([]byte{0x09, 0x04, 0, 0, 0, 0, 0, 0, 0}, &hd),
		pkg.ErrDescriptorTypeMismatch)
}

func TestParseConfigurationTree(t *testing.T) {
	cfg := []byte{
		0x09, 0x02, 0x22, 0x00, 0x01, 0x01, 0x00, 0x80, 0x32,
		0x09, 0x04, 0x00, 0x00, 0x01, 0x03, 0x01, 0x02, 0x00,
		0x09, 0x21, 0x10, 0x01, 0x00, 0x01, 0x22, 0x34, 0x00,
		0x07, 0x05, 0x81, 0x03, 0x04, 0x00, 0x0A,
	}
	var d Device
	require.NoError(t, d.parseConfigurationTree(cfg))
	assert.Equal(t, uint16(len(cfg)), d.Configuration().TotalLength)
	require.Len(t, d.Interfaces(), 1)
	require.Len(t, d.Endpoints(), 1)
	assert.Equal(t, []uint8{1}, d.InEndpoints())
	hd, ok := d.HID(0)
	require.True(t, ok)
	assert.Equal(t, uint16(52), hd.ReportLength)
	_, ok = d.HID(1)
	assert.False(t, ok)
	assert.Equal(t, cfg, d.RawConfiguration())

	// A truncated child descriptor ends the walk.
	require.NoError(t, d.parseConfigurationTree(cfg[:20]))
	assert.Len(t, d.Interfaces(), 1)
	assert.Empty(t, d.Endpoints())

	assert.ErrorIs(t, d.parseConfigurationTree(cfg[:4]), pkg.ErrDescriptorTooShort)
}

package hal_test

import (
	"testing"

	"github.com/ardnew/bitusb/device/hal/sim"
	"github.com/ardnew/bitusb/host/hal"
	"github.com/stretchr/testify/assert"
)

var _ hal.Port = (*sim.Bus)(nil)

func TestSpeedString(t *testing.T) {
	tests := []struct {
		speed hal.Speed
		want  string
	}{
		{hal.SpeedUnknown, "Unknown"},
		{hal.SpeedLow, "Low Speed"},
		{hal.SpeedFull, "Full Speed"},
		{hal.Speed(200), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.speed.String())
		})
	}
}

func TestDeviceAddressValid(t *testing.T) {
	assert.False(t, hal.DefaultAddress.Valid())
	assert.True(t, hal.DeviceAddress(1).Valid())
	assert.True(t, hal.MaxAddress.Valid())
	assert.False(t, hal.DeviceAddress(128).Valid())
	assert.Equal(t, "42", hal.DeviceAddress(42).String())
}

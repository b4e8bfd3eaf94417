package device

import (
	"testing"

	"github.com/ardnew/bitusb/device/hal"
	"github.com/ardnew/bitusb/device/hal/sim"
	"github.com/ardnew/bitusb/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bootRequest() SetupPacket {
	var s SetupPacket
	GetSetReportSetup(&s, ReportTypeFeature, 0xFD, 0, SetupPacketSize)
	return s
}

func TestBootSelector(t *testing.T) {
	s := bootRequest()
	assert.Equal(t, KeyHIDSetReport, s.Key())
	assert.Equal(t, BootSelector, s.Selector())
}

func TestIsBootCookie(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"exact", BootCookie[:], true},
		{"last byte ignored", []byte{0xFD, 0x12, 0x34, 0xAA, 0xBB, 0xCC, 0xDD, 0x99}, true},
		{"wrong byte", []byte{0xFD, 0x12, 0x34, 0xAA, 0xBB, 0xCC, 0xDE, 0x00}, false},
		{"short", BootCookie[:7], false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isBootCookie(tt.data))
		})
	}
}

func TestBootloaderEntry(t *testing.T) {
	r := newRig(t, sim.Config{}, Config{})

	r.setup(0, bootRequest())
	assert.Equal(t, RebootPending, r.dev.RebootStage())

	p, ok := r.out(0, 0, wire.PIDData1, BootCookie[:])
	require.True(t, ok)
	assert.Equal(t, wire.PIDAck, p.PID)
	assert.Equal(t, RebootArmed, r.dev.RebootStage())
	assert.Empty(t, r.bus.SystemEvents())

	// Status stage: the empty packet goes out before the reset.
	p = r.in(0, 0)
	assert.Equal(t, wire.PIDData1, p.PID)
	assert.Empty(t, p.Data)

	assert.Equal(t, []sim.SystemEvent{
		{Op: sim.OpUnlockBootMode, Value: hal.BootKey1},
		{Op: sim.OpUnlockBootMode, Value: hal.BootKey2},
		{Op: sim.OpSetBootMode, Value: 1},
		{Op: sim.OpLockFlash},
		{Op: sim.OpClearResetFlags},
		{Op: sim.OpReset},
	}, r.bus.SystemEvents())
	boot, set := r.bus.BootMode()
	assert.True(t, set)
	assert.True(t, boot)
	assert.True(t, r.dev.Halted())
	assert.True(t, r.bus.Halted())
	assert.Equal(t, StateHalted, r.dev.State())

	_, ok = r.token(wire.PIDIn, 0, 0)
	assert.False(t, ok)
}

func TestBootloaderLatchReset(t *testing.T) {
	tests := []struct {
		name  string
		after func(r *rig)
	}{
		{"other request", func(r *rig) {
			var s SetupPacket
			GetDescriptorSetup(&s, DescriptorTypeDevice, 0, 8)
			r.setup(0, s)
		}},
		{"wrong cookie", func(r *rig) {
			r.out(0, 0, wire.PIDData1, []byte{1, 2, 3, 4, 5, 6, 7, 8})
		}},
		{"cookie on another endpoint", func(r *rig) {
			r.out(0, 1, wire.PIDData0, BootCookie[:])
		}},
		{"empty packet on another endpoint", func(r *rig) {
			p, ok := r.out(0, 1, wire.PIDData0, nil)
			require.True(r.t, ok)
			require.Equal(r.t, wire.PIDAck, p.PID)
			// The cookie that follows no longer arms the latch.
			r.out(0, 0, wire.PIDData1, BootCookie[:])
		}},
		{"bus reset", func(r *rig) {
			r.bus.BusReset()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t, sim.Config{}, Config{})
			r.setup(0, bootRequest())
			require.Equal(t, RebootPending, r.dev.RebootStage())
			tt.after(r)
			assert.Equal(t, RebootIdle, r.dev.RebootStage())
		})
	}
}

func TestBootloaderStatusStageKeepsLatch(t *testing.T) {
	r := newRig(t, sim.Config{}, Config{})
	r.setup(0, bootRequest())
	// A zero-length OUT on endpoint 0 is a status stage, not data.
	p, ok := r.out(0, 0, wire.PIDData1, nil)
	require.True(t, ok)
	assert.Equal(t, wire.PIDAck, p.PID)
	assert.Equal(t, RebootPending, r.dev.RebootStage())
}

func TestBootloaderArmedThenCleared(t *testing.T) {
	r := newRig(t, sim.Config{}, Config{})
	r.setup(0, bootRequest())
	r.out(0, 0, wire.PIDData1, BootCookie[:])
	require.Equal(t, RebootArmed, r.dev.RebootStage())

	// A new control transfer before the status stage disarms.
	var s SetupPacket
	GetSetConfigurationSetup(&s, 1)
	r.controlOut(0, s)
	assert.Equal(t, RebootIdle, r.dev.RebootStage())
	assert.False(t, r.dev.Halted())
	assert.Empty(t, r.bus.SystemEvents())
}

func TestBootloaderCookieWithoutRequest(t *testing.T) {
	r := newRig(t, sim.Config{}, Config{})
	var s SetupPacket
	GetSetReportSetup(&s, ReportTypeOutput, 0, 1, SetupPacketSize)
	r.setup(0, s)
	r.out(0, 0, wire.PIDData1, BootCookie[:])
	assert.Equal(t, RebootIdle, r.dev.RebootStage())
}

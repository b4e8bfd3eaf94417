package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/bitusb/device/hal"
	"github.com/ardnew/bitusb/pkg/wire"
)

// echo binds a handler that samples the host waveform and answers with
// reply, the way the device core answers a token.
func echo(b *Bus, reply ...wire.LineState) *[]wire.LineState {
	var seen []wire.LineState
	b.Vectors().Bind(hal.IRQEXTI7_0, func() {
		b.AckInterrupt()
		for i := 0; i < 3; i++ {
			seen = append(seen, b.Sample())
		}
		for _, s := range reply {
			b.Drive(s)
		}
		b.Release()
	})
	return &seen
}

func TestOscillator(t *testing.T) {
	b := New(Config{})
	assert.Equal(t, DefaultControl, b.ReadControl())
	assert.Equal(t, uint8(hal.TrimCenter), b.Trim())
	assert.InDelta(t, float64(hal.CoreClockHz), b.Frequency(), 1e-3)

	b.Advance(FrameNs)
	assert.Equal(t, uint32(hal.FrameCycles), b.Cycles())

	b.WriteControl(hal.WithTrim(b.ReadControl(), hal.TrimCenter+1))
	assert.InDelta(t, hal.CoreClockHz*(1+DefaultTrimStep), b.Frequency(), 1e-3)

	fast := New(Config{Drift: 0.01})
	assert.InDelta(t, hal.CoreClockHz*1.01, fast.Frequency(), 1e-3)
}

func TestTransactSilent(t *testing.T) {
	b := New(Config{})
	assert.Nil(t, b.Transact([]wire.LineState{wire.K, wire.J}))
	raised, acked := b.Interrupts()
	assert.Equal(t, 1, raised)
	assert.Equal(t, 0, acked)
	assert.Empty(t, b.Frames())
}

func TestTransactCapture(t *testing.T) {
	b := New(Config{})
	seen := echo(b, wire.K, wire.J, wire.SE0)

	out := b.Transact([]wire.LineState{wire.K, wire.K, wire.J, wire.K})
	assert.Equal(t, []wire.LineState{wire.K, wire.K, wire.J}, *seen)
	assert.Equal(t, []wire.LineState{wire.K, wire.J, wire.SE0}, out)

	raised, acked := b.Interrupts()
	assert.Equal(t, 1, raised)
	assert.Equal(t, 1, acked)

	frames := b.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, out, frames[0].States())
	for _, p := range frames[0].BitPeriods() {
		assert.InDelta(t, hal.BitTimeNs, p, 1e-6)
	}

	b.ClearFrames()
	assert.Empty(t, b.Frames())

	b.SetRecording(false)
	assert.Len(t, b.Transact([]wire.LineState{wire.K, wire.K, wire.J}), 3)
	assert.Empty(t, b.Frames())
}

func TestIdleLine(t *testing.T) {
	b := New(Config{})
	assert.Equal(t, wire.J, b.Sample())
	assert.InDelta(t, hal.BitTimeNs, b.Now(), 1e-9)
}

func TestKeepAliveFrameBoundary(t *testing.T) {
	b := New(Config{})
	var got [][]wire.LineState
	b.Vectors().Bind(hal.IRQEXTI7_0, func() {
		var w []wire.LineState
		for i := 0; i < 3; i++ {
			w = append(w, b.Sample())
		}
		got = append(got, w)
	})

	b.Idle(3)
	require.Len(t, got, 3)
	for _, w := range got {
		assert.Equal(t, []wire.LineState{wire.SE0, wire.SE0, wire.J}, w)
	}
	assert.Greater(t, b.Now(), 3*FrameNs)
	assert.Less(t, b.Now(), 3*FrameNs+10*hal.BitTimeNs)
}

func TestSystemRecorder(t *testing.T) {
	b := New(Config{})
	_, set := b.BootMode()
	assert.False(t, set)

	b.UnlockBootMode(hal.BootKey1)
	b.UnlockBootMode(hal.BootKey2)
	b.SetBootMode(true)
	b.LockFlash()
	b.ClearResetFlags()
	assert.False(t, b.Halted())
	b.Reset()

	assert.True(t, b.Halted())
	assert.Equal(t, []SystemEvent{
		{Op: OpUnlockBootMode, Value: hal.BootKey1},
		{Op: OpUnlockBootMode, Value: hal.BootKey2},
		{Op: OpSetBootMode, Value: 1},
		{Op: OpLockFlash},
		{Op: OpClearResetFlags},
		{Op: OpReset},
	}, b.SystemEvents())

	bootloader, set := b.BootMode()
	assert.True(t, set)
	assert.True(t, bootloader)

	// A reset device no longer takes interrupts.
	echo(b, wire.K)
	assert.Nil(t, b.Transact([]wire.LineState{wire.K, wire.K, wire.J}))
	raised, _ := b.Interrupts()
	assert.Equal(t, 0, raised)
}

func TestBusReset(t *testing.T) {
	b := New(Config{})
	var seen []wire.LineState
	b.Vectors().Bind(hal.IRQEXTI7_0, func() {
		for i := 0; i < 4; i++ {
			seen = append(seen, b.Sample())
		}
	})

	b.BusReset()
	assert.Equal(t, []wire.LineState{wire.SE0, wire.SE0, wire.SE0, wire.SE0}, seen)
	assert.InDelta(t, ResetNs, b.Now(), 10*hal.BitTimeNs)
	raised, _ := b.Interrupts()
	assert.Equal(t, 1, raised)
}

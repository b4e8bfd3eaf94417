package hal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimingConstants(t *testing.T) {
	assert.Equal(t, 32, CyclesPerBit)
	assert.Equal(t, 48000, FrameCycles)
	assert.InDelta(t, 666.67, BitTimeNs, 0.01)
}

func TestTrimField(t *testing.T) {
	ctl := uint32(0x0000_5083) // HSION|HSIRDY, trim 16, unrelated high bits
	assert.Equal(t, uint8(16), TrimField(ctl))

	got := WithTrim(ctl, 17)
	assert.Equal(t, uint8(17), TrimField(got))
	assert.Equal(t, ctl&^TrimMask, got&^TrimMask)

	assert.Equal(t, uint8(TrimMax), TrimField(WithTrim(0, 0xFF)))
}

func TestVectorTable(t *testing.T) {
	var vt VectorTable
	assert.Equal(t, IRQ(23), NumIRQ)
	assert.Equal(t, IRQ(4), IRQEXTI7_0)
	assert.Equal(t, "EXTI7_0", IRQEXTI7_0.String())

	calls := 0
	assert.False(t, vt.Dispatch(IRQEXTI7_0))
	vt.Bind(IRQEXTI7_0, func() { calls++ })
	assert.True(t, vt.Bound(IRQEXTI7_0))
	assert.True(t, vt.Dispatch(IRQEXTI7_0))
	assert.False(t, vt.Dispatch(IRQTIM2))
	assert.False(t, vt.Dispatch(NumIRQ))
	assert.Equal(t, 1, calls)

	vt.Bind(IRQEXTI7_0, nil)
	assert.False(t, vt.Bound(IRQEXTI7_0))
}

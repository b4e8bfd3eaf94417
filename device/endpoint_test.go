package device

import (
	"testing"

	"github.com/ardnew/bitusb/pkg/wire"
	"github.com/stretchr/testify/assert"
)

func TestEndpointArm(t *testing.T) {
	data := make([]byte, 22)
	for i := range data {
		data[i] = byte(i)
	}

	tests := []struct {
		name   string
		limit  uint16
		chunks []int
	}{
		{"full", 255, []int{8, 8, 6, 0}},
		{"limited", 8, []int{8, 0}},
		{"limited mid chunk", 12, []int{8, 4, 0}},
		{"exact multiple", 16, []int{8, 8, 0}},
		{"zero", 0, []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ep Endpoint
			ep.Count = 9
			ep.Arm(data, tt.limit)
			assert.Zero(t, ep.Count)

			offset := 0
			for i, want := range tt.chunks {
				c := ep.Chunk()
				assert.Len(t, c, want, "chunk %d", i)
				if want > 0 {
					assert.Equal(t, data[offset:offset+want], c)
				}
				offset += want
				ep.Count++
			}
		})
	}
}

func TestEndpointRemaining(t *testing.T) {
	var ep Endpoint
	ep.Arm(make([]byte, 18), 64)
	assert.Equal(t, uint32(18), ep.Remaining())
	ep.Count = 2
	assert.Equal(t, uint32(2), ep.Remaining())
	ep.Count = 3
	assert.Zero(t, ep.Remaining())

	ep.Arm(nil, 64)
	assert.Zero(t, ep.Remaining())
	assert.Nil(t, ep.Chunk())
}

func TestEndpointInPID(t *testing.T) {
	var ep Endpoint
	assert.Equal(t, wire.PIDData0, ep.InPID())
	ep.ToggleIn = true
	assert.Equal(t, wire.PIDData1, ep.InPID())

	ep.Custom = true
	ep.Reset()
	assert.Equal(t, Endpoint{}, ep)
}

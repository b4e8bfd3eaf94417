package device

import "github.com/ardnew/bitusb/pkg/wire"

// Endpoint transfer types (USB 2.0 Spec Table 9-13).
const (
	EndpointTypeControl   = 0x00 // Control transfer
	EndpointTypeInterrupt = 0x03 // Interrupt transfer
)

// Endpoint directions.
const (
	EndpointDirectionOut = 0x00 // Host to device
	EndpointDirectionIn  = 0x80 // Device to host
)

// Endpoint is the per-endpoint transfer state touched by the interrupt path.
//
// The fields are exported so IN callbacks can drive their own transfers.
// They must only be written from interrupt context.
type Endpoint struct {
	// Count is the number of acknowledged IN packets in the current
	// transfer. The next buffered chunk starts at Count*Endpoint0Size.
	Count uint32

	// ToggleIn selects DATA1 for the next IN packet.
	ToggleIn bool

	// ToggleOut is the DATA PID expected on the next OUT packet.
	ToggleOut bool

	// Custom routes IN tokens on this endpoint to the IN handler instead of
	// the buffered control logic.
	Custom bool

	// MaxLen is the total length of the buffered IN transfer.
	MaxLen uint32

	// Opaque is the buffered IN source. It is borrowed, never copied, and
	// is only valid for the current control transfer.
	Opaque []byte
}

// Reset clears all transfer state.
func (e *Endpoint) Reset() {
	*e = Endpoint{}
}

// Arm sets up a buffered IN transfer of at most limit bytes of data.
func (e *Endpoint) Arm(data []byte, limit uint16) {
	n := uint32(len(data))
	if uint32(limit) < n {
		n = uint32(limit)
	}
	e.Opaque = data
	e.MaxLen = n
	e.Count = 0
}

// Chunk returns the next buffered IN chunk, at most Endpoint0Size bytes.
// It is empty once the transfer is exhausted.
func (e *Endpoint) Chunk() []byte {
	offset := e.Count * Endpoint0Size
	if offset >= e.MaxLen || offset >= uint32(len(e.Opaque)) {
		return nil
	}
	end := offset + Endpoint0Size
	if end > e.MaxLen {
		end = e.MaxLen
	}
	return e.Opaque[offset:end]
}

// Remaining returns the number of buffered bytes not yet acknowledged.
func (e *Endpoint) Remaining() uint32 {
	offset := e.Count * Endpoint0Size
	if offset >= e.MaxLen {
		return 0
	}
	return e.MaxLen - offset
}

// InPID returns the DATA PID for the next IN packet.
func (e *Endpoint) InPID() wire.PID {
	return wire.DataPID(e.ToggleIn)
}

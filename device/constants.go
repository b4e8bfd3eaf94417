package device

import "fmt"

// Endpoint limits.
const (
	// DefaultEndpoints is the number of endpoints a device serves when the
	// configuration does not say otherwise: control plus two interrupt IN.
	DefaultEndpoints = 3

	// MaxEndpoints is the largest endpoint count a token can address.
	MaxEndpoints = 16

	// Endpoint0Size is the control endpoint packet size at low speed.
	Endpoint0Size = 8
)

// Poly selects the CRC appended by the transmit engine.
type Poly uint8

// CRC selectors for SendData.
const (
	PolyNone  Poly = 0 // Nothing appended (handshakes, empty responses)
	PolyCRC16 Poly = 2 // CRC16 over the payload (DATA stages)
)

// RebootStage is the state of the two-stage bootloader entry latch.
type RebootStage uint8

// Latch stages.
const (
	RebootIdle    RebootStage = 0 // Not armed
	RebootPending RebootStage = 1 // Arming request seen, waiting for the cookie
	RebootArmed   RebootStage = 2 // Cookie seen, next IN on endpoint 0 resets
)

// String returns a human-readable latch stage.
func (r RebootStage) String() string {
	switch r {
	case RebootIdle:
		return "Idle"
	case RebootPending:
		return "Pending"
	case RebootArmed:
		return "Armed"
	default:
		return fmt.Sprintf("Unknown RebootStage (%d)", r)
	}
}

// ControlState is the position of endpoint 0 in a control transfer.
type ControlState uint8

// Control transfer states.
const (
	ControlIdle         ControlState = 0 // No transfer in progress, or status done
	ControlSetupPending ControlState = 1 // SETUP token seen, waiting for the URB
	ControlDataIn       ControlState = 2 // Buffered IN data armed on endpoint 0
)

// String returns a human-readable control state.
func (s ControlState) String() string {
	switch s {
	case ControlIdle:
		return "Idle"
	case ControlSetupPending:
		return "SetupPending"
	case ControlDataIn:
		return "DataIn"
	default:
		return fmt.Sprintf("Unknown ControlState (%d)", s)
	}
}

// Device states as defined in USB 2.0 specification section 9.1, plus the
// terminal state after the bootloader reset.
const (
	StateDefault State = 0 // Unaddressed, answering address 0
	StateAddress State = 1 // Assigned a unique address
	StateHalted  State = 2 // Reset into the alternate boot image
)

// State represents USB device state.
type State uint8

// String returns a human-readable state description.
func (s State) String() string {
	switch s {
	case StateDefault:
		return "Default"
	case StateAddress:
		return "Address"
	case StateHalted:
		return "Halted"
	default:
		return fmt.Sprintf("Unknown State (%d)", s)
	}
}

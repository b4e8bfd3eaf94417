package wire

// LineState is the differential state of the D+/D- pair.
type LineState uint8

// Line states at low speed. J is the idle state (D- high); K is its inverse.
const (
	SE0 LineState = iota // Both lines low: end of packet, keepalive, reset
	J                    // Idle
	K                    // Inverse of idle
	SE1                  // Both lines high: illegal
)

// Toggle returns the opposite differential state. SE0 and SE1 are unchanged.
func (s LineState) Toggle() LineState {
	switch s {
	case J:
		return K
	case K:
		return J
	default:
		return s
	}
}

// Differential reports whether the state is J or K.
func (s LineState) Differential() bool {
	return s == J || s == K
}

// String returns the conventional name of the line state.
func (s LineState) String() string {
	switch s {
	case SE0:
		return "SE0"
	case J:
		return "J"
	case K:
		return "K"
	case SE1:
		return "SE1"
	default:
		return "?"
	}
}

// Lines returns the single-ended D+ and D- levels of a low-speed line state.
func (s LineState) Lines() (dp, dm bool) {
	switch s {
	case J:
		return false, true
	case K:
		return true, false
	case SE1:
		return true, true
	default:
		return false, false
	}
}

// FromLines converts single-ended low-speed D+ and D- levels to a line state.
func FromLines(dp, dm bool) LineState {
	switch {
	case dp && dm:
		return SE1
	case dm:
		return J
	case dp:
		return K
	default:
		return SE0
	}
}

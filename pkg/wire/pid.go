package wire

import "fmt"

// PID is a packet identifier byte as it appears on the wire: the 4-bit type
// in the low nibble and its complement in the high nibble.
type PID uint8

// Packet identifiers (USB 2.0 Table 8-1).
const (
	PIDOut   PID = 0xE1
	PIDIn    PID = 0x69
	PIDSOF   PID = 0xA5
	PIDSetup PID = 0x2D

	PIDData0 PID = 0xC3
	PIDData1 PID = 0x4B

	PIDAck   PID = 0xD2
	PIDNak   PID = 0x5A
	PIDStall PID = 0x1E

	PIDPre PID = 0x3C
)

// Valid reports whether the check nibble is the complement of the type nibble.
func (p PID) Valid() bool {
	return (uint8(p)>>4)^(uint8(p)&0x0F) == 0x0F
}

// IsToken reports whether the PID is IN, OUT, SETUP or SOF.
func (p PID) IsToken() bool {
	return p.Valid() && uint8(p)&0x03 == 0x01
}

// IsData reports whether the PID is DATA0 or DATA1.
func (p PID) IsData() bool {
	return p == PIDData0 || p == PIDData1
}

// IsHandshake reports whether the PID is ACK, NAK or STALL.
func (p PID) IsHandshake() bool {
	return p.Valid() && uint8(p)&0x03 == 0x02
}

// DataPID returns DATA1 when toggle is set, DATA0 otherwise.
func DataPID(toggle bool) PID {
	if toggle {
		return PIDData1
	}
	return PIDData0
}

// String returns the conventional name of the PID.
func (p PID) String() string {
	switch p {
	case PIDOut:
		return "OUT"
	case PIDIn:
		return "IN"
	case PIDSOF:
		return "SOF"
	case PIDSetup:
		return "SETUP"
	case PIDData0:
		return "DATA0"
	case PIDData1:
		return "DATA1"
	case PIDAck:
		return "ACK"
	case PIDNak:
		return "NAK"
	case PIDStall:
		return "STALL"
	case PIDPre:
		return "PRE"
	default:
		return fmt.Sprintf("PID(0x%02X)", uint8(p))
	}
}

package pkg

import "errors"

// Physical-layer and framing errors. The receive path classifies dropped
// frames with these values; they are counted and logged, never returned
// from the interrupt handler.
var (
	// ErrGlitch indicates an edge interrupt with no start-of-packet behind it.
	ErrGlitch = errors.New("line glitch")

	// ErrSync indicates a preamble that was too short, too long, or malformed.
	ErrSync = errors.New("bad sync preamble")

	// ErrBitStuff indicates a missing transition after six consecutive ones.
	ErrBitStuff = errors.New("bit stuffing error")

	// ErrFrameAlign indicates an end-of-packet that was not byte aligned.
	ErrFrameAlign = errors.New("frame not byte aligned")

	// ErrOverrun indicates a frame longer than the packet buffer.
	ErrOverrun = errors.New("data overrun")

	// ErrSE1 indicates both data lines high, which is never valid.
	ErrSE1 = errors.New("illegal SE1 line state")

	// ErrCRC indicates a CRC error.
	ErrCRC = errors.New("CRC error")
)

// Protocol errors.
var (
	// ErrStall indicates an endpoint stall condition.
	ErrStall = errors.New("endpoint stalled")

	// ErrNAK indicates a NAK response (device busy).
	ErrNAK = errors.New("NAK received")

	// ErrTimeout indicates a transaction that exhausted its retries.
	ErrTimeout = errors.New("transfer timeout")

	// ErrNoResponse indicates the device did not drive the bus after a packet
	// that requires a reply.
	ErrNoResponse = errors.New("no response")

	// ErrToggle indicates a DATA PID that did not match the expected toggle.
	ErrToggle = errors.New("data toggle mismatch")

	// ErrProtocol indicates a protocol error.
	ErrProtocol = errors.New("protocol error")

	// ErrInvalidPID indicates a PID byte whose check nibble does not match.
	ErrInvalidPID = errors.New("invalid PID")

	// ErrNotAddressed indicates a token for another device address.
	ErrNotAddressed = errors.New("token not addressed to this device")

	// ErrInvalidEndpoint indicates an invalid endpoint address.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrInvalidRequest indicates an invalid or unsupported request.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrBufferTooSmall indicates the provided buffer is too small.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrDescriptorTooShort indicates the descriptor data is too short.
	ErrDescriptorTooShort = errors.New("descriptor too short")

	// ErrDescriptorTypeMismatch indicates the descriptor type does not match expected.
	ErrDescriptorTypeMismatch = errors.New("descriptor type mismatch")

	// ErrSetupPacketTooShort indicates the setup packet data is too short.
	ErrSetupPacketTooShort = errors.New("setup packet too short")

	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrHalted indicates the device left the running system through the
	// bootloader reset and no longer answers.
	ErrHalted = errors.New("device halted")
)

// TransactionStatus is the outcome of one host transaction as seen on the bus.
type TransactionStatus int

// Transaction status values.
const (
	TransactionSuccess    TransactionStatus = iota // Handshake or valid data received
	TransactionNoResponse                          // Device stayed silent
	TransactionCRC                                 // Reply failed its CRC
	TransactionNAK                                 // Device answered NAK
	TransactionStall                               // Device answered STALL
	TransactionToggle                              // Reply carried the wrong DATA PID
	TransactionProtocol                            // Reply was not a legal packet
)

// String returns a string representation of the transaction status.
func (s TransactionStatus) String() string {
	switch s {
	case TransactionSuccess:
		return "success"
	case TransactionNoResponse:
		return "no-response"
	case TransactionCRC:
		return "crc"
	case TransactionNAK:
		return "nak"
	case TransactionStall:
		return "stall"
	case TransactionToggle:
		return "toggle"
	case TransactionProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error returns the corresponding error for the transaction status.
func (s TransactionStatus) Error() error {
	switch s {
	case TransactionSuccess:
		return nil
	case TransactionNoResponse:
		return ErrNoResponse
	case TransactionCRC:
		return ErrCRC
	case TransactionNAK:
		return ErrNAK
	case TransactionStall:
		return ErrStall
	case TransactionToggle:
		return ErrToggle
	default:
		return ErrProtocol
	}
}

// Retryable reports whether the host should repeat the transaction.
func (s TransactionStatus) Retryable() bool {
	switch s {
	case TransactionNoResponse, TransactionCRC, TransactionNAK:
		return true
	default:
		return false
	}
}

// Package wire implements the USB low-speed line coding shared by the device
// core, the line simulator and the simulated host.
//
// The package covers everything between bytes and line states:
//
//   - [LineState] values as seen on D+/D- (SE0, J, K, SE1)
//   - [PID] constants with their on-wire check nibbles
//   - running CRC5 and CRC16 registers with their good-frame residuals
//   - an NRZI [Encoder] with bit stuffing and a matching [Decoder]
//   - a [Sync] detector for the KJKJKJKK start-of-packet pattern
//   - whole-packet [EncodePacket] and [DecodePacket] helpers
//
// Bits are transmitted least significant first. At low speed the idle J
// state has D- high, and a logical 0 is encoded as a change of state.
//
// The encoder and decoder work one bit at a time so that a bit-banging
// engine can interleave them with line sampling:
//
//	var enc wire.Encoder
//	enc.Reset(wire.K)
//	enc.WriteByte(byte(wire.PIDAck), bus.Drive)
package wire

package device

import "github.com/ardnew/bitusb/pkg/wire"

// emptyPayload is what SendEmpty puts on the wire: the same bytes as a
// zero-length DATA packet's CRC16.
var emptyPayload = [2]byte{0, 0}

// SendData transmits one packet: the turnaround K and the rest of the sync
// field, the token PID, data, an optional CRC16, and end of packet. It then
// releases the bus. Every line state lasts one bit time per the HAL timing
// contract.
func (d *Device) SendData(data []byte, poly Poly, token wire.PID) {
	emit := d.hal.Drive
	e := &d.enc

	// The first sync bit is a zero, so the first state driven is K.
	e.Reset(wire.J, 0)
	e.WriteBits(wire.SyncPattern, 8, emit)
	e.WriteBits(uint32(token), 8, emit)

	crc := wire.CRC16Init
	for _, b := range data {
		e.WriteBits(uint32(b), 8, emit)
		if poly == PolyCRC16 {
			crc = wire.CRC16Byte(crc, b)
		}
	}
	if poly == PolyCRC16 {
		e.WriteBits(uint32(^crc), 16, emit)
	}

	e.EOP(emit)
	d.hal.Release()
}

// SendEmpty transmits a zero-length DATA packet with the given PID.
func (d *Device) SendEmpty(token wire.PID) {
	d.SendData(emptyPayload[:], PolyNone, token)
}

// SendHandshake transmits a PID-only packet.
func (d *Device) SendHandshake(pid wire.PID) {
	d.SendData(nil, PolyNone, pid)
}

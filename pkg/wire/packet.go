package wire

import (
	"fmt"

	"github.com/ardnew/bitusb/pkg"
)

// Packet buffer limits at low speed: PID, up to eight payload bytes, two CRC
// bytes and one byte of slack for a trailing partial byte.
const (
	MaxPayload    = 8
	MaxPacketSize = 12
)

// Packet is a decoded packet.
type Packet struct {
	PID   PID
	Token Token  // valid for token PIDs
	Data  []byte // payload without PID and CRC, for data PIDs
	Raw   []byte // every decoded byte including PID and CRC
}

// EncodePacket returns the complete line waveform for a packet: sync, PID,
// payload, optional CRC16, and end of packet. The waveform starts with the
// first K after idle.
func EncodePacket(pid PID, payload []byte, withCRC bool) []LineState {
	out := make([]LineState, 0, 8+(1+len(payload)+2)*10+3)
	emit := func(s LineState) { out = append(out, s) }

	var e Encoder
	e.Reset(J, 0)
	e.WriteBits(SyncPattern, 8, emit)
	e.WriteBits(uint32(pid), 8, emit)
	for _, b := range payload {
		e.WriteBits(uint32(b), 8, emit)
	}
	if withCRC {
		e.WriteBits(uint32(CRC16(payload)), 16, emit)
	}
	e.EOP(emit)
	return out
}

// EncodeToken returns the waveform for an IN, OUT or SETUP token.
func EncodeToken(pid PID, t Token) []LineState {
	var buf [TokenSize]byte
	t.MarshalTo(buf[:])
	return EncodePacket(pid, buf[:], false)
}

// EncodeData returns the waveform for a DATA0/DATA1 packet with CRC16.
func EncodeData(pid PID, payload []byte) []LineState {
	return EncodePacket(pid, payload, true)
}

// EncodeHandshake returns the waveform for a PID-only packet.
func EncodeHandshake(pid PID) []LineState {
	return EncodePacket(pid, nil, false)
}

// DecodeBytes recovers the raw bytes of a waveform. Leading idle J samples
// are skipped; decoding stops at the first SE0.
func DecodeBytes(states []LineState) ([]byte, error) {
	i := 0
	for i < len(states) && states[i] == J {
		i++
	}
	if i == len(states) {
		return nil, pkg.ErrNoResponse
	}

	var sync Sync
	done := false
	for ; i < len(states) && !done; i++ {
		var err error
		if done, err = sync.Feed(states[i]); err != nil {
			return nil, err
		}
	}
	if !done {
		return nil, pkg.ErrSync
	}

	var dec Decoder
	dec.Reset(K, 1)
	var out []byte
	var cur byte
	nbits := 0
	for ; i < len(states); i++ {
		s := states[i]
		if s == SE0 {
			if nbits%8 != 0 {
				return out, pkg.ErrFrameAlign
			}
			return out, nil
		}
		bit, stuffed, err := dec.Feed(s)
		if err != nil {
			return out, err
		}
		if stuffed {
			continue
		}
		cur |= bit << (nbits % 8)
		nbits++
		if nbits%8 == 0 {
			out = append(out, cur)
			cur = 0
		}
	}
	return out, fmt.Errorf("missing end of packet: %w", pkg.ErrProtocol)
}

// DecodePacket decodes a waveform and validates the PID and CRC.
func DecodePacket(states []LineState) (Packet, error) {
	raw, err := DecodeBytes(states)
	if err != nil {
		return Packet{}, err
	}
	if len(raw) == 0 {
		return Packet{}, pkg.ErrProtocol
	}
	p := Packet{PID: PID(raw[0]), Raw: raw}
	if !p.PID.Valid() {
		return p, pkg.ErrInvalidPID
	}
	switch {
	case p.PID.IsData():
		if len(raw) < 3 {
			return p, pkg.ErrProtocol
		}
		if !CRC16Check(raw[1:]) {
			return p, pkg.ErrCRC
		}
		p.Data = raw[1 : len(raw)-2]
	case p.PID.IsToken():
		if len(raw) != 1+TokenSize {
			return p, pkg.ErrProtocol
		}
		if !ParseToken(raw[1:], &p.Token) {
			return p, pkg.ErrCRC
		}
	case p.PID.IsHandshake():
		if len(raw) != 1 {
			return p, pkg.ErrProtocol
		}
	}
	return p, nil
}

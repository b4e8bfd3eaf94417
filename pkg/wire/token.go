package wire

// Token is the 16-bit body of an IN, OUT or SETUP packet: a 7-bit address, a
// 4-bit endpoint and a 5-bit CRC.
type Token struct {
	Addr uint8
	Endp uint8
}

// TokenSize is the number of bytes following the PID in a token packet.
const TokenSize = 2

// Field returns the 16-bit little-endian token field including its CRC5.
func (t Token) Field() uint16 {
	f := uint16(t.Addr&0x7F) | uint16(t.Endp&0x0F)<<7
	return f | uint16(CRC5(f, 11))<<11
}

// MarshalTo writes the two token bytes into buf and returns the number of
// bytes written, or 0 if buf is too small.
func (t Token) MarshalTo(buf []byte) int {
	if len(buf) < TokenSize {
		return 0
	}
	f := t.Field()
	buf[0] = byte(f)
	buf[1] = byte(f >> 8)
	return TokenSize
}

// ParseToken extracts address and endpoint from the two token bytes. It
// returns false if the CRC5 does not check.
func ParseToken(data []byte, out *Token) bool {
	if len(data) < TokenSize {
		return false
	}
	f := uint16(data[0]) | uint16(data[1])<<8
	reg := CRC5Init
	for i := 0; i < 16; i++ {
		reg = CRC5Bit(reg, uint8(f>>i)&1)
	}
	if CRC5Remainder(reg) != 0 {
		return false
	}
	out.Addr = uint8(f & 0x7F)
	out.Endp = uint8(f>>7) & 0x0F
	return true
}

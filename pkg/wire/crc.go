package wire

// CRC16 parameters for data packets: x^16+x^15+x^2+1 processed LSB first.
const (
	CRC16Init     uint16 = 0xFFFF
	CRC16Poly     uint16 = 0xA001
	CRC16Residual uint16 = 0xB001
)

// CRC5 parameters for token packets: x^5+x^2+1 processed LSB first.
const (
	CRC5Init     uint8 = 0x1F
	CRC5Poly     uint8 = 0x14
	CRC5Residual uint8 = 0x06
)

// CRC16Bit feeds one bit into a running CRC16 register.
func CRC16Bit(reg uint16, bit uint8) uint16 {
	x := (reg ^ uint16(bit)) & 1
	reg >>= 1
	if x != 0 {
		reg ^= CRC16Poly
	}
	return reg
}

// CRC16Byte feeds eight bits, least significant first.
func CRC16Byte(reg uint16, b byte) uint16 {
	for i := 0; i < 8; i++ {
		reg = CRC16Bit(reg, (b>>i)&1)
	}
	return reg
}

// CRC16 returns the CRC field for data, already complemented. It is sent
// low byte first.
func CRC16(data []byte) uint16 {
	reg := CRC16Init
	for _, b := range data {
		reg = CRC16Byte(reg, b)
	}
	return ^reg
}

// CRC16Check reports whether data, with its two trailing CRC bytes,
// leaves the good-frame residual in the register.
func CRC16Check(frame []byte) bool {
	reg := CRC16Init
	for _, b := range frame {
		reg = CRC16Byte(reg, b)
	}
	return reg == CRC16Residual
}

// CRC5Bit feeds one bit into a running CRC5 register.
func CRC5Bit(reg uint8, bit uint8) uint8 {
	x := (reg ^ bit) & 1
	reg >>= 1
	if x != 0 {
		reg ^= CRC5Poly
	}
	return reg
}

// CRC5 returns the complemented CRC5 over the low n bits of v.
func CRC5(v uint16, n int) uint8 {
	reg := CRC5Init
	for i := 0; i < n; i++ {
		reg = CRC5Bit(reg, uint8(v>>i)&1)
	}
	return ^reg & 0x1F
}

// CRC5Remainder normalises a CRC5 register that has consumed all sixteen
// token bits so that an intact token yields zero.
func CRC5Remainder(reg uint8) uint8 {
	return (reg ^ CRC5Residual) & 0x1F
}

package device

import (
	"fmt"
	"log/slog"

	"github.com/ardnew/bitusb/pkg"
	"github.com/ardnew/bitusb/pkg/wire"
)

// dispatch routes a cleanly received packet by PID.
func (d *Device) dispatch() {
	p := &d.pkt
	pid := p.pid()
	d.stats.frames.Add(1)

	if pkg.LogEnabled(pkg.LevelTrace) {
		pkg.LogTrace(pkg.ComponentDispatch, "packet", "pid", pid.String(), "bytes", p.n)
	}

	switch pid {
	case wire.PIDAck:
		// Handshakes carry no CRC.
		d.handleAck()

	case wire.PIDData0, wire.PIDData1:
		if p.n < 3 || p.crc != wire.CRC16Residual {
			d.drop(pkg.ErrCRC)
			return
		}
		d.handleData(pid, p.payload())

	case wire.PIDIn, wire.PIDOut, wire.PIDSetup:
		tok, err := d.token()
		if err != nil {
			d.drop(err)
			return
		}
		switch pid {
		case wire.PIDIn:
			d.handleIn(tok.Endp)
		case wire.PIDOut:
			d.handleOut(tok.Endp)
		case wire.PIDSetup:
			d.handleSetupToken(tok.Endp)
		}

	default:
		// SOF, NAK, STALL and PRE need no action from a low-speed function.
		if pkg.LogEnabled(slog.LevelDebug) {
			pkg.LogDebug(pkg.ComponentDispatch, "packet ignored", "pid", pid.String())
		}
	}
}

// token validates the token CRC5, endpoint range and address.
func (d *Device) token() (wire.Token, error) {
	p := &d.pkt
	var tok wire.Token
	if p.n != 1+wire.TokenSize {
		return tok, fmt.Errorf("%w: token of %d bytes", pkg.ErrProtocol, p.n)
	}
	if wire.CRC5Remainder(p.crc5) != 0 {
		return tok, pkg.ErrCRC
	}
	tok.Addr = p.buf[1] & 0x7F
	tok.Endp = (p.buf[1]>>7 | p.buf[2]<<1) & 0x0F
	if tok.Endp >= d.numEndpoints {
		return tok, pkg.ErrInvalidEndpoint
	}
	if !d.addressed(tok.Addr) {
		return tok, pkg.ErrNotAddressed
	}
	return tok, nil
}

// addressed reports whether a token for addr belongs to this device. After
// SET_ADDRESS the previous address stays valid until the status stage is
// acknowledged or the host uses the new one.
func (d *Device) addressed(addr uint8) bool {
	if addr == d.address {
		d.addressPending = false
		return true
	}
	return d.addressPending && addr == d.prevAddress
}

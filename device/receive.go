package device

import (
	"errors"
	"log/slog"

	"github.com/ardnew/bitusb/pkg"
	"github.com/ardnew/bitusb/pkg/wire"
)

// crcMode selects which running register the decoder feeds.
type crcMode uint8

const (
	crcNone crcMode = iota
	crcToken
	crcData
)

// packet is the receive buffer. It lives only for one interrupt.
type packet struct {
	buf  [wire.MaxPacketSize]byte
	n    int // complete bytes
	bits int // decoded bits, stuffed bits excluded
	mode crcMode
	crc5 uint8
	crc  uint16
}

func (p *packet) reset() {
	p.n = 0
	p.bits = 0
	p.mode = crcNone
	p.crc5 = wire.CRC5Init
	p.crc = wire.CRC16Init
}

func (p *packet) pid() wire.PID {
	return wire.PID(p.buf[0])
}

// payload returns the bytes between the PID and the CRC16.
func (p *packet) payload() []byte {
	if p.n < 3 {
		return nil
	}
	return p.buf[1 : p.n-2]
}

// HandleInterrupt is the edge interrupt service routine. It runs one
// complete transaction step: synchronise, decode, dispatch and, when the
// protocol calls for it, transmit the response before returning.
func (d *Device) HandleInterrupt() {
	defer d.hal.AckInterrupt()
	if d.halted {
		return
	}

	s := d.hal.Sample()
	if s == wire.SE0 {
		d.idle()
		return
	}

	var sync wire.Sync
	for {
		done, err := sync.Feed(s)
		if err != nil {
			d.drop(err)
			return
		}
		if done {
			break
		}
		s = d.hal.Sample()
		if s == wire.SE0 {
			// Idle, not a packet in flight.
			d.idle()
			return
		}
	}

	if err := d.receive(); err != nil {
		d.drop(err)
		return
	}
	d.dispatch()
}

// receive decodes from the end of the sync field to end of packet.
func (d *Device) receive() error {
	p := &d.pkt
	p.reset()

	var dec wire.Decoder
	dec.Reset(wire.K, 1)
	var cur byte
	for {
		s := d.hal.Sample()
		if s == wire.SE0 {
			break
		}
		bit, stuffed, err := dec.Feed(s)
		if err != nil {
			return err
		}
		if stuffed {
			continue
		}

		switch p.mode {
		case crcToken:
			p.crc5 = wire.CRC5Bit(p.crc5, bit)
		case crcData:
			p.crc = wire.CRC16Bit(p.crc, bit)
		}

		cur |= bit << (p.bits & 7)
		p.bits++
		if p.bits&7 != 0 {
			continue
		}
		if p.n == len(p.buf) {
			return pkg.ErrOverrun
		}
		p.buf[p.n] = cur
		p.n++
		cur = 0
		if p.n == 1 {
			switch pid := wire.PID(p.buf[0]); {
			case pid.IsData():
				p.mode = crcData
			case pid.IsToken():
				p.mode = crcToken
			}
		}
	}

	if p.bits&7 != 0 {
		return pkg.ErrFrameAlign
	}
	if p.n == 0 {
		return pkg.ErrSync
	}
	return nil
}

// drop classifies an abandoned frame. Nothing is reported to the host; it
// times out and retries.
func (d *Device) drop(err error) {
	c := &d.stats
	switch {
	case errors.Is(err, pkg.ErrGlitch):
		c.glitches.Add(1)
	case errors.Is(err, pkg.ErrSync), errors.Is(err, pkg.ErrSE1):
		c.syncErrors.Add(1)
	case errors.Is(err, pkg.ErrBitStuff):
		c.stuffErrors.Add(1)
	case errors.Is(err, pkg.ErrFrameAlign):
		c.alignErrors.Add(1)
	case errors.Is(err, pkg.ErrOverrun):
		c.overruns.Add(1)
	case errors.Is(err, pkg.ErrCRC):
		c.crcErrors.Add(1)
	case errors.Is(err, pkg.ErrProtocol):
		c.malformed.Add(1)
	case errors.Is(err, pkg.ErrNotAddressed), errors.Is(err, pkg.ErrInvalidEndpoint):
		c.ignored.Add(1)
	}
	if pkg.LogEnabled(slog.LevelDebug) {
		pkg.LogDebug(pkg.ComponentRx, "frame dropped", "err", err, "bytes", d.pkt.n)
	}
}

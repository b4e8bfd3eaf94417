package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ardnew/bitusb/device"
	"github.com/ardnew/bitusb/host/hal"
	"github.com/ardnew/bitusb/pkg"
	"github.com/ardnew/bitusb/pkg/wire"
)

// toggles is the data toggle state of one endpoint as tracked by the host.
type toggles struct {
	in  bool // DATA1 expected on the next IN
	out bool // DATA1 sent on the next OUT
}

// Stats counts host transactions.
type Stats struct {
	Transactions uint32 // Transactions attempted, including retries
	Retries      uint32 // Transactions repeated after a retryable failure
	Failures     uint32 // Transactions that exhausted their retries
	KeepAlives   uint32 // Keepalives issued
}

// Host drives a single low-speed device over a [hal.Port] one transaction
// at a time. All methods are safe for concurrent use; transactions are
// serialised.
type Host struct {
	port    hal.Port
	retries int

	mutex  sync.Mutex
	toggle [device.MaxEndpoints]toggles

	transactions atomic.Uint32
	retried      atomic.Uint32
	failures     atomic.Uint32
	keepalives   atomic.Uint32
}

// New creates a host on port.
func New(port hal.Port) *Host {
	return &Host{
		port:    port,
		retries: DefaultRetries,
	}
}

// SetRetries sets the number of repeats after a retryable failure.
func (h *Host) SetRetries(n int) {
	if n < 0 {
		n = 0
	}
	h.mutex.Lock()
	h.retries = n
	h.mutex.Unlock()
}

// Port returns the bus the host drives.
func (h *Host) Port() hal.Port {
	return h.port
}

// Stats returns a snapshot of the transaction counters.
func (h *Host) Stats() Stats {
	return Stats{
		Transactions: h.transactions.Load(),
		Retries:      h.retried.Load(),
		Failures:     h.failures.Load(),
		KeepAlives:   h.keepalives.Load(),
	}
}

// KeepAlive issues one low-speed keepalive.
func (h *Host) KeepAlive() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.port.KeepAlive()
	h.keepalives.Add(1)
}

// BusReset resets the bus, returning the device to address 0, and forgets
// all toggle state.
func (h *Host) BusReset() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.port.BusReset()
	h.toggle = [device.MaxEndpoints]toggles{}
}

// ResetToggles forgets all toggle state, as after a bus reset.
func (h *Host) ResetToggles() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.toggle = [device.MaxEndpoints]toggles{}
}

// Setup runs the SETUP stage of a control transfer on endpoint 0.
func (h *Host) Setup(ctx context.Context, addr uint8, s *device.SetupPacket) error {
	var buf [device.SetupPacketSize]byte
	s.MarshalTo(buf[:])
	token := wire.EncodeToken(wire.PIDSetup, wire.Token{Addr: addr})
	data := wire.EncodeData(wire.PIDData0, buf[:])

	h.mutex.Lock()
	defer h.mutex.Unlock()
	err := h.retry(ctx, "setup", func() pkg.TransactionStatus {
		h.port.Transact(token)
		return handshake(h.port.Transact(data))
	})
	if err != nil {
		return err
	}
	// The data stage starts with DATA1 in either direction.
	h.toggle[0] = toggles{in: true, out: true}
	return nil
}

// In runs one IN transaction and copies the payload into buf. It returns
// the payload length, which may exceed len(buf).
func (h *Host) In(ctx context.Context, addr, endp uint8, buf []byte) (int, error) {
	if endp >= device.MaxEndpoints {
		return 0, pkg.ErrInvalidEndpoint
	}
	token := wire.EncodeToken(wire.PIDIn, wire.Token{Addr: addr, Endp: endp})
	ack := wire.EncodeHandshake(wire.PIDAck)

	h.mutex.Lock()
	defer h.mutex.Unlock()
	tg := &h.toggle[endp]
	n := 0
	err := h.retry(ctx, "in", func() pkg.TransactionStatus {
		p, status := decode(h.port.Transact(token))
		if status != pkg.TransactionSuccess {
			return status
		}
		if !p.PID.IsData() {
			return pkg.TransactionProtocol
		}
		// Acknowledge even a repeated packet so the device moves on.
		h.port.Transact(ack)
		if p.PID != wire.DataPID(tg.in) {
			if pkg.LogEnabled(slog.LevelDebug) {
				pkg.LogDebug(pkg.ComponentHost, "repeated data discarded",
					"endpoint", endp, "pid", p.PID.String())
			}
			return pkg.TransactionToggle
		}
		tg.in = !tg.in
		n = copy(buf, p.Data)
		if len(p.Data) > n {
			n = len(p.Data)
		}
		return pkg.TransactionSuccess
	})
	return n, err
}

// Out runs one OUT transaction with up to eight bytes of data.
func (h *Host) Out(ctx context.Context, addr, endp uint8, data []byte) error {
	if endp >= device.MaxEndpoints {
		return pkg.ErrInvalidEndpoint
	}
	if len(data) > wire.MaxPayload {
		return fmt.Errorf("out payload of %d bytes: %w", len(data), pkg.ErrInvalidParameter)
	}
	token := wire.EncodeToken(wire.PIDOut, wire.Token{Addr: addr, Endp: endp})

	h.mutex.Lock()
	defer h.mutex.Unlock()
	tg := &h.toggle[endp]
	packet := wire.EncodeData(wire.DataPID(tg.out), data)
	err := h.retry(ctx, "out", func() pkg.TransactionStatus {
		h.port.Transact(token)
		return handshake(h.port.Transact(packet))
	})
	if err != nil {
		return err
	}
	tg.out = !tg.out
	return nil
}

// retry repeats op while it fails with a retryable status. A toggle
// mismatch on IN is retried as well: the device repeats a packet until it
// sees the ACK.
func (h *Host) retry(ctx context.Context, kind string, op func() pkg.TransactionStatus) error {
	var status pkg.TransactionStatus
	for attempt := 0; attempt <= h.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if attempt > 0 {
			h.retried.Add(1)
		}
		h.transactions.Add(1)
		status = op()
		if status == pkg.TransactionSuccess {
			return nil
		}
		if pkg.LogEnabled(pkg.LevelTrace) {
			pkg.LogTrace(pkg.ComponentHost, "transaction failed",
				"kind", kind, "attempt", attempt, "status", status.String())
		}
		if !status.Retryable() && status != pkg.TransactionToggle {
			break
		}
	}
	h.failures.Add(1)
	if status.Retryable() || status == pkg.TransactionToggle {
		return fmt.Errorf("%s: %w: %w", kind, pkg.ErrTimeout, status.Error())
	}
	return fmt.Errorf("%s: %w", kind, status.Error())
}

// decode classifies a device reply.
func decode(reply []wire.LineState) (wire.Packet, pkg.TransactionStatus) {
	if reply == nil {
		return wire.Packet{}, pkg.TransactionNoResponse
	}
	p, err := wire.DecodePacket(reply)
	switch {
	case err == nil:
	case errors.Is(err, pkg.ErrCRC):
		return p, pkg.TransactionCRC
	default:
		return p, pkg.TransactionProtocol
	}
	switch p.PID {
	case wire.PIDNak:
		return p, pkg.TransactionNAK
	case wire.PIDStall:
		return p, pkg.TransactionStall
	}
	return p, pkg.TransactionSuccess
}

// handshake classifies the reply to a data packet, which must be ACK.
func handshake(reply []wire.LineState) pkg.TransactionStatus {
	p, status := decode(reply)
	if status != pkg.TransactionSuccess {
		return status
	}
	if p.PID != wire.PIDAck {
		return pkg.TransactionProtocol
	}
	return pkg.TransactionSuccess
}

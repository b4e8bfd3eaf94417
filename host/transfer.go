package host

import (
	"context"
	"fmt"

	"github.com/ardnew/bitusb/device"
	"github.com/ardnew/bitusb/pkg"
)

// ControlIn runs a control read: SETUP, IN packets until a short packet or
// s.Length bytes, then a zero-length OUT status stage. Data beyond len(buf)
// is read and dropped. It returns the number of bytes copied into buf.
func (h *Host) ControlIn(ctx context.Context, addr uint8, s *device.SetupPacket, buf []byte) (int, error) {
	if err := h.Setup(ctx, addr, s); err != nil {
		return 0, err
	}
	var chunk [device.Endpoint0Size]byte
	total, copied := 0, 0
	for total < int(s.Length) {
		n, err := h.In(ctx, addr, 0, chunk[:])
		if err != nil {
			return copied, fmt.Errorf("data stage: %w", err)
		}
		if n > len(chunk) {
			return copied, fmt.Errorf("data stage: %d byte packet: %w", n, pkg.ErrProtocol)
		}
		copied += copy(buf[copied:], chunk[:n])
		total += n
		if n < device.Endpoint0Size {
			break
		}
	}
	if err := h.Out(ctx, addr, 0, nil); err != nil {
		return copied, fmt.Errorf("status stage: %w", err)
	}
	return copied, nil
}

// ControlOut runs a control write: SETUP, OUT packets carrying data, then a
// zero-length IN status stage.
func (h *Host) ControlOut(ctx context.Context, addr uint8, s *device.SetupPacket, data []byte) error {
	if err := h.Setup(ctx, addr, s); err != nil {
		return err
	}
	for off := 0; off < len(data); off += device.Endpoint0Size {
		end := off + device.Endpoint0Size
		if end > len(data) {
			end = len(data)
		}
		if err := h.Out(ctx, addr, 0, data[off:end]); err != nil {
			return fmt.Errorf("data stage: %w", err)
		}
	}
	var status [device.Endpoint0Size]byte
	n, err := h.In(ctx, addr, 0, status[:])
	if err != nil {
		return fmt.Errorf("status stage: %w", err)
	}
	if n != 0 {
		return fmt.Errorf("status stage: %d bytes: %w", n, pkg.ErrProtocol)
	}
	return nil
}

// GetDescriptor reads a descriptor addressed to the device.
func (h *Host) GetDescriptor(ctx context.Context, addr, descType, index uint8, langID uint16, buf []byte) (int, error) {
	var s device.SetupPacket
	device.GetDescriptorSetup(&s, descType, index, uint16(len(buf)))
	s.Index = langID
	return h.ControlIn(ctx, addr, &s, buf)
}

// GetInterfaceDescriptor reads a class descriptor addressed to an interface,
// such as a HID report descriptor.
func (h *Host) GetInterfaceDescriptor(ctx context.Context, addr, descType, iface uint8, buf []byte) (int, error) {
	var s device.SetupPacket
	device.GetInterfaceDescriptorSetup(&s, descType, iface, uint16(len(buf)))
	return h.ControlIn(ctx, addr, &s, buf)
}

// GetStringDescriptor reads and decodes a string descriptor in US English.
func (h *Host) GetStringDescriptor(ctx context.Context, addr, index uint8) (string, error) {
	var buf [MaxDescriptorSize]byte
	n, err := h.GetDescriptor(ctx, addr, device.DescriptorTypeString, index, device.LangIDUSEnglish, buf[:])
	if err != nil {
		return "", err
	}
	return device.ParseStringDescriptor(buf[:n])
}

// SetAddress assigns addr to the device currently answering at old.
func (h *Host) SetAddress(ctx context.Context, old, addr uint8) error {
	var s device.SetupPacket
	device.GetSetAddressSetup(&s, addr)
	if err := h.ControlOut(ctx, old, &s, nil); err != nil {
		return fmt.Errorf("set address %d: %w", addr, err)
	}
	pkg.LogDebug(pkg.ComponentHost, "address assigned", "address", addr)
	return nil
}

// SetConfiguration selects a configuration.
func (h *Host) SetConfiguration(ctx context.Context, addr, value uint8) error {
	var s device.SetupPacket
	device.GetSetConfigurationSetup(&s, value)
	if err := h.ControlOut(ctx, addr, &s, nil); err != nil {
		return fmt.Errorf("set configuration %d: %w", value, err)
	}
	return nil
}

// SetReport sends a HID SET_REPORT with data to an interface.
func (h *Host) SetReport(ctx context.Context, addr, iface, reportType, reportID uint8, data []byte) error {
	var s device.SetupPacket
	device.GetSetReportSetup(&s, reportType, reportID, iface, uint16(len(data)))
	if err := h.ControlOut(ctx, addr, &s, data); err != nil {
		return fmt.Errorf("set report: %w", err)
	}
	return nil
}

// InterruptIn polls an interrupt IN endpoint once.
func (h *Host) InterruptIn(ctx context.Context, addr, endp uint8, buf []byte) (int, error) {
	if endp == 0 {
		return 0, pkg.ErrInvalidEndpoint
	}
	return h.In(ctx, addr, endp, buf)
}

// Report is one interrupt IN payload delivered by a [Poller].
type Report struct {
	Endpoint uint8
	Frame    uint32 // Keepalive frame the report was read in
	Data     []byte
	Err      error
}

// Poller reads interrupt IN endpoints at a fixed frame interval and sends
// a keepalive every frame, the way a root hub services a low-speed device.
type Poller struct {
	host      *Host
	addr      uint8
	endpoints []uint8
	interval  int
	reports   chan Report
}

// NewPoller creates a poller for endpoints of the device at addr. interval
// is the bInterval of the endpoints in frames.
func NewPoller(h *Host, addr uint8, interval int, endpoints ...uint8) *Poller {
	if interval < 1 {
		interval = 1
	}
	return &Poller{
		host:      h,
		addr:      addr,
		endpoints: endpoints,
		interval:  interval,
		reports:   make(chan Report, 4*len(endpoints)+1),
	}
}

// Reports returns the channel reports are delivered on. It is closed when
// Run returns.
func (p *Poller) Reports() <-chan Report {
	return p.reports
}

// Run polls for frames keepalive frames, or until ctx is cancelled when
// frames is zero. A report is delivered for every poll, including failed
// ones.
func (p *Poller) Run(ctx context.Context, frames uint32) error {
	defer close(p.reports)
	var buf [device.Endpoint0Size]byte
	for frame := uint32(1); frames == 0 || frame <= frames; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.host.KeepAlive()
		if frame%uint32(p.interval) != 0 {
			continue
		}
		for _, endp := range p.endpoints {
			n, err := p.host.InterruptIn(ctx, p.addr, endp, buf[:])
			r := Report{Endpoint: endp, Frame: frame, Err: err}
			if err == nil {
				r.Data = append([]byte(nil), buf[:n]...)
			}
			select {
			case p.reports <- r:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

package device

import (
	"log/slog"

	"github.com/ardnew/bitusb/pkg"
	"github.com/ardnew/bitusb/pkg/wire"
)

// handleSetupToken starts a control transfer. The URB follows in DATA0.
func (d *Device) handleSetupToken(endp uint8) {
	d.currentEndpoint = endp
	d.setupRequest = true
	ep := &d.endpoints[endp]
	ep.ToggleIn = true
	ep.ToggleOut = false
	ep.Count = 0
	ep.Opaque = nil
}

// handleOut records the target of the DATA packet that follows.
func (d *Device) handleOut(endp uint8) {
	d.currentEndpoint = endp
}

// handleAck completes an IN packet: advance the buffer and flip the toggle.
func (d *Device) handleAck() {
	ep := &d.endpoints[d.currentEndpoint]
	ep.ToggleIn = !ep.ToggleIn
	ep.Count++
	if d.addressPending && d.currentEndpoint == 0 {
		d.addressPending = false
		pkg.LogDebug(pkg.ComponentControl, "address active", "address", d.address)
	}
}

// handleIn answers an IN token.
func (d *Device) handleIn(endp uint8) {
	d.currentEndpoint = endp
	ep := &d.endpoints[endp]
	token := ep.InPID()

	if d.reboot == RebootArmed && endp == 0 {
		d.SendEmpty(token)
		d.enterBootloader()
		return
	}

	if ep.Custom || endp != 0 {
		if d.inHandler == nil {
			d.SendEmpty(token)
			return
		}
		d.inHandler.HandleIn(d, ep, d.scratch[:], endp, token)
		return
	}

	chunk := ep.Chunk()
	if len(chunk) == 0 {
		d.SendEmpty(token)
		return
	}
	d.SendData(chunk, PolyCRC16, token)
}

// handleData processes a DATA0/DATA1 packet for the current endpoint.
func (d *Device) handleData(pid wire.PID, data []byte) {
	endp := d.currentEndpoint
	ep := &d.endpoints[endp]

	if ep.ToggleOut != (pid == wire.PIDData1) {
		// Retransmission of a packet already taken: our ACK was lost.
		d.stats.duplicates.Add(1)
		d.SendHandshake(wire.PIDAck)
		return
	}

	setup := endp == 0 && d.setupRequest
	if setup && len(data) != SetupPacketSize {
		d.drop(pkg.ErrSetupPacketTooShort)
		return
	}
	ep.ToggleOut = !ep.ToggleOut

	if setup {
		d.handleRequest(ep, data)
	} else {
		d.handleOutData(ep, endp, data)
	}
	d.SendHandshake(wire.PIDAck)
}

// handleOutData handles OUT payloads that are not URBs.
func (d *Device) handleOutData(ep *Endpoint, endp uint8, data []byte) {
	if endp == 0 && len(data) == 0 {
		// Status stage of an IN transfer.
		return
	}
	if d.reboot != RebootIdle {
		if endp == 0 && isBootCookie(data) {
			d.reboot = RebootArmed
			pkg.LogDebug(pkg.ComponentBoot, "bootloader latch armed")
		} else {
			d.reboot = RebootIdle
			pkg.LogDebug(pkg.ComponentBoot, "bootloader latch cleared", "endpoint", endp)
		}
	}
	if d.dataHandler != nil && len(data) > 0 {
		d.dataHandler.HandleData(d, ep, endp, data)
	}
}

// handleRequest parses the 8-byte URB and arms endpoint 0 for the data or
// status stage.
func (d *Device) handleRequest(ep *Endpoint, data []byte) {
	setup := &d.lastSetup
	if err := ParseSetupPacket(data, setup); err != nil {
		return
	}
	ep.Count = 0
	ep.Opaque = nil
	ep.MaxLen = 0
	ep.Custom = false
	d.setupRequest = false

	key := setup.Key()
	sel := setup.Selector()
	if d.reboot != RebootIdle && !(key == KeyHIDSetReport && sel == BootSelector) {
		d.reboot = RebootIdle
		pkg.LogDebug(pkg.ComponentBoot, "bootloader latch cleared by request")
	}

	if pkg.LogEnabled(slog.LevelDebug) {
		pkg.LogDebug(pkg.ComponentControl, "request", "setup", setup.String())
	}

	switch key {
	case KeyGetDescriptor:
		desc := d.descriptors.Descriptor(sel)
		ep.Arm(desc, setup.Length)
		return

	case KeySetAddress:
		d.setAddress(uint8(setup.Value & 0x7F))
		return

	case KeyHIDSetReport:
		if sel == BootSelector {
			d.reboot = RebootPending
			pkg.LogDebug(pkg.ComponentBoot, "bootloader latch pending")
			return
		}
	}

	if d.ctlHandler != nil {
		d.ctlHandler.HandleControl(d, ep, setup)
	}
}

// setAddress assigns a new bus address. The old one is honoured until the
// status stage completes.
func (d *Device) setAddress(addr uint8) {
	d.prevAddress = d.address
	d.address = addr
	d.addressPending = d.prevAddress != addr
	pkg.LogDebug(pkg.ComponentControl, "address assigned", "address", addr)
}

package device

import (
	"log/slog"

	"github.com/ardnew/bitusb/device/hal"
	"github.com/ardnew/bitusb/pkg"
	"github.com/ardnew/bitusb/pkg/wire"
)

// Keepalive trim controller constants. Deviations outside the band are
// missed or extra keepalives, not oscillator error, and are ignored.
const (
	KeepaliveBand   = 4000
	TrimWindupStep  = 512
	nominalInterval = hal.FrameCycles
)

// BusResetBits is the number of consecutive SE0 bit times that reset the
// bus. A keepalive holds SE0 for two; a host reset holds it for 10 ms, and
// a device must react after 2.5 us.
const BusResetBits = 4

// idle runs on an SE0 outside a packet. A short SE0 is a keepalive; one that
// lasts BusResetBits is a bus reset.
func (d *Device) idle() {
	now := d.hal.Cycles()
	for n := 1; n < BusResetBits; n++ {
		if d.hal.Sample() != wire.SE0 {
			d.keepalive(now)
			return
		}
	}
	d.resetBus()
	d.stats.busResets.Add(1)
	pkg.LogDebug(pkg.ComponentPHY, "bus reset")
}

// resetBus returns the protocol state to the default, unaddressed device.
// The oscillator trim survives a bus reset.
func (d *Device) resetBus() {
	for i := range d.endpoints {
		d.endpoints[i].Reset()
	}
	d.currentEndpoint = 0
	d.address = 0
	d.prevAddress = 0
	d.addressPending = false
	d.setupRequest = false
	d.lastSetup = SetupPacket{}
	d.reboot = RebootIdle
}

// keepalive measures the interval between the SE0 seen at cycle now and
// the previous one, and integrates its error into the oscillator trim.
func (d *Device) keepalive(now uint32) {
	delta := int32(now - d.lastSE0)
	d.lastSE0 = now
	d.deltaSE0 = delta
	d.stats.keepalives.Add(1)

	dev := delta - nominalInterval
	if dev < -KeepaliveBand || dev > KeepaliveBand {
		return
	}
	d.windup += dev

	steps := d.windup / TrimWindupStep
	if steps == 0 {
		return
	}
	d.windup -= steps * TrimWindupStep

	ctl := d.hal.ReadControl()
	trim := int32(hal.TrimField(ctl)) - steps
	if trim < 0 {
		trim = 0
	} else if trim > hal.TrimMax {
		trim = hal.TrimMax
	}
	d.hal.WriteControl(hal.WithTrim(ctl, uint8(trim)))
	d.stats.trimSteps.Add(1)

	if pkg.LogEnabled(slog.LevelDebug) {
		pkg.LogDebug(pkg.ComponentTrim, "oscillator trimmed",
			"trim", trim, "deviation", dev, "windup", d.windup)
	}
}

// Windup returns the integrated keepalive error in cycles.
func (d *Device) Windup() int32 {
	return d.windup
}

// DeltaSE0 returns the cycle count between the last two keepalives.
func (d *Device) DeltaSE0() int32 {
	return d.deltaSE0
}

package device

import (
	"bytes"

	"github.com/ardnew/bitusb/device/hal"
	"github.com/ardnew/bitusb/pkg"
)

// BootSelector is wValue|wIndex<<16 of the HID SET_REPORT request that
// starts the bootloader entry sequence: feature report 0xFD on interface 0.
const BootSelector Selector = 0x000003FD

// BootCookie is the OUT payload that completes arming. Only the first seven
// bytes are compared; the eighth is ignored.
var BootCookie = [SetupPacketSize]byte{0xFD, 0x12, 0x34, 0xAA, 0xBB, 0xCC, 0xDD, 0x00}

const bootCookieMatch = 7

func isBootCookie(data []byte) bool {
	return len(data) == len(BootCookie) &&
		bytes.Equal(data[:bootCookieMatch], BootCookie[:bootCookieMatch])
}

// enterBootloader selects the bootloader image and resets. It does not
// return on hardware; in simulation the device halts.
func (d *Device) enterBootloader() {
	pkg.LogInfo(pkg.ComponentBoot, "entering bootloader")
	d.halted = true
	d.hal.UnlockBootMode(hal.BootKey1)
	d.hal.UnlockBootMode(hal.BootKey2)
	d.hal.SetBootMode(true)
	d.hal.LockFlash()
	d.hal.ClearResetFlags()
	d.hal.Reset()
}

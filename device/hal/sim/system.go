package sim

import "github.com/ardnew/bitusb/pkg"

// UnlockBootMode implements [hal.System].
func (b *Bus) UnlockBootMode(key uint32) {
	b.events = append(b.events, SystemEvent{Op: OpUnlockBootMode, Value: key})
}

// SetBootMode implements [hal.System].
func (b *Bus) SetBootMode(bootloader bool) {
	var v uint32
	if bootloader {
		v = 1
	}
	b.events = append(b.events, SystemEvent{Op: OpSetBootMode, Value: v})
}

// LockFlash implements [hal.System].
func (b *Bus) LockFlash() {
	b.events = append(b.events, SystemEvent{Op: OpLockFlash})
}

// ClearResetFlags implements [hal.System].
func (b *Bus) ClearResetFlags() {
	b.events = append(b.events, SystemEvent{Op: OpClearResetFlags})
}

// Reset implements [hal.System]. The simulated device stops responding.
func (b *Bus) Reset() {
	b.events = append(b.events, SystemEvent{Op: OpReset})
	b.halted = true
	pkg.LogInfo(pkg.ComponentSim, "system reset", "events", len(b.events))
}

// SystemEvents returns the recorded system actions in order.
func (b *Bus) SystemEvents() []SystemEvent {
	return b.events
}

// BootMode reports the last boot mode selected, and whether one was set.
func (b *Bus) BootMode() (bootloader, set bool) {
	for i := len(b.events) - 1; i >= 0; i-- {
		if b.events[i].Op == OpSetBootMode {
			return b.events[i].Value != 0, true
		}
	}
	return false, false
}

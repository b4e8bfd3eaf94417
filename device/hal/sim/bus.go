package sim

import (
	"github.com/ardnew/bitusb/device/hal"
	"github.com/ardnew/bitusb/pkg"
	"github.com/ardnew/bitusb/pkg/wire"
)

// Config describes the simulated device oscillator.
type Config struct {
	// Drift is the fractional error of the untrimmed oscillator, e.g. 0.01
	// for a device running 1 % fast.
	Drift float64 `yaml:"drift" json:"drift"`

	// TrimStep is the relative frequency change per trim code.
	TrimStep float64 `yaml:"trim_step" json:"trimStep"`

	// Control is the initial oscillator control register.
	Control uint32 `yaml:"control" json:"control"`
}

// Cell is one driven bit time as seen by a logic analyzer.
type Cell struct {
	AtNs  float64
	State wire.LineState
}

// Frame is everything the device drove during one bus turnaround.
type Frame struct {
	Cells []Cell
	EndNs float64 // release time
}

// BitPeriods returns the measured duration of every driven bit.
func (f Frame) BitPeriods() []float64 {
	out := make([]float64, len(f.Cells))
	for i, c := range f.Cells {
		end := f.EndNs
		if i+1 < len(f.Cells) {
			end = f.Cells[i+1].AtNs
		}
		out[i] = end - c.AtNs
	}
	return out
}

// States returns the driven line states in order.
func (f Frame) States() []wire.LineState {
	out := make([]wire.LineState, len(f.Cells))
	for i, c := range f.Cells {
		out[i] = c.State
	}
	return out
}

// SystemOp identifies a recorded system action.
type SystemOp string

// Recorded system actions.
const (
	OpUnlockBootMode  SystemOp = "unlock-boot-mode"
	OpSetBootMode     SystemOp = "set-boot-mode"
	OpLockFlash       SystemOp = "lock-flash"
	OpClearResetFlags SystemOp = "clear-reset-flags"
	OpReset           SystemOp = "reset"
)

// SystemEvent is one recorded system action.
type SystemEvent struct {
	Op    SystemOp
	Value uint32
}

// Bus simulates the D+/D- pair, the device oscillator and the system
// control registers.
type Bus struct {
	cfg Config

	now     float64
	cycles  float64
	control uint32

	vectors *hal.VectorTable

	rx      []wire.LineState
	driving bool
	frame   *Frame
	frames  []Frame
	record  bool

	interrupts int
	acks       int

	events []SystemEvent
	halted bool
}

// New creates a simulated bus. A zero TrimStep selects DefaultTrimStep and a
// zero Control selects DefaultControl.
func New(cfg Config) *Bus {
	if cfg.TrimStep == 0 {
		cfg.TrimStep = DefaultTrimStep
	}
	if cfg.Control == 0 {
		cfg.Control = DefaultControl
	}
	return &Bus{
		cfg:     cfg,
		control: cfg.Control,
		vectors: &hal.VectorTable{},
		record:  true,
	}
}

// Vectors returns the interrupt vector table the bus raises interrupts on.
func (b *Bus) Vectors() *hal.VectorTable {
	return b.vectors
}

// SetRecording enables or disables keeping captured frames. Long polling
// runs disable it to bound memory.
func (b *Bus) SetRecording(on bool) {
	b.record = on
}

// Sample implements [hal.Bus]. With nothing queued the line idles at J.
func (b *Bus) Sample() wire.LineState {
	s := wire.J
	if len(b.rx) > 0 {
		s = b.rx[0]
		b.rx = b.rx[1:]
	}
	b.Advance(hal.BitTimeNs)
	return s
}

// Drive implements [hal.Bus]. The first Drive of a turnaround waits for the
// rest of the host packet to finish on the wire.
func (b *Bus) Drive(s wire.LineState) {
	if !b.driving {
		b.Advance(float64(len(b.rx)) * hal.BitTimeNs)
		b.rx = nil
		b.driving = true
		b.frame = &Frame{}
	}
	b.frame.Cells = append(b.frame.Cells, Cell{AtNs: b.now, State: s})
	b.Advance(b.deviceBitNs())
}

// Release implements [hal.Bus].
func (b *Bus) Release() {
	if !b.driving {
		return
	}
	b.driving = false
	b.frame.EndNs = b.now
	if b.record {
		b.frames = append(b.frames, *b.frame)
	}
}

// AckInterrupt implements [hal.Bus].
func (b *Bus) AckInterrupt() {
	b.acks++
}

// Transact puts a host waveform on the bus, raises the edge interrupt and
// returns the line states the device drove in response, or nil if it stayed
// silent.
func (b *Bus) Transact(w []wire.LineState) []wire.LineState {
	if b.halted || len(w) == 0 {
		b.Advance(float64(len(w)) * hal.BitTimeNs)
		return nil
	}
	b.rx = append(b.rx[:0], w...)
	b.frame = nil
	b.interrupts++
	b.vectors.Dispatch(hal.IRQEXTI7_0)
	if b.driving {
		// A handler that never released leaves the bus driven; treat the
		// frame as ended here.
		pkg.LogWarn(pkg.ComponentSim, "device did not release the bus")
		b.Release()
	}
	b.Advance(float64(len(b.rx)) * hal.BitTimeNs)
	b.rx = nil
	// Inter-packet gap before the host may drive again.
	b.Advance(2 * hal.BitTimeNs)

	if b.frame == nil {
		return nil
	}
	out := b.frame.States()
	b.frame = nil
	return out
}

// KeepAlive waits for the next frame boundary and sends the low-speed
// keepalive (two bit times of SE0 then J).
func (b *Bus) KeepAlive() {
	b.Advance(b.nextFrame() - b.now)
	b.Transact([]wire.LineState{wire.SE0, wire.SE0, wire.J})
}

// BusReset drives SE0 for ResetNs, then returns the line to idle.
func (b *Bus) BusReset() {
	w := make([]wire.LineState, int(ResetNs/hal.BitTimeNs)+1)
	for i := range w {
		w[i] = wire.SE0
	}
	w[len(w)-1] = wire.J
	b.Transact(w)
}

// Idle lets n whole frames pass with a keepalive in each.
func (b *Bus) Idle(n int) {
	for i := 0; i < n; i++ {
		b.KeepAlive()
	}
}

// Frames returns the captured device frames.
func (b *Bus) Frames() []Frame {
	return b.frames
}

// ClearFrames discards the captured frames.
func (b *Bus) ClearFrames() {
	b.frames = nil
}

// Interrupts returns how many edge interrupts were raised and acknowledged.
func (b *Bus) Interrupts() (raised, acked int) {
	return b.interrupts, b.acks
}

// Halted reports whether the simulated device has reset out of the
// running image.
func (b *Bus) Halted() bool {
	return b.halted
}

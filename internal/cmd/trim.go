package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/bitusb/device/hal"
)

// Trim runs keepalives only and prints how the device pulls its oscillator
// trim toward the host frame rate.
type Trim struct {
	Drift    float64 `help:"Fractional error of the untrimmed device oscillator" default:"0.01" env:"BITUSB_DRIFT"`
	TrimStep float64 `help:"Relative frequency change per trim code" default:"0.0025" env:"BITUSB_TRIM_STEP"`
	Frames   int     `help:"Keepalive frames to run" default:"300" env:"BITUSB_FRAMES"`
	Every    int     `help:"Print a row every N frames" default:"10"`
}

// Run is called by Kong when the trim command is executed.
func (c *Trim) Run(logger *slog.Logger, out io.Writer) error {
	ctx, stop := signalContext()
	defer stop()

	r, err := (&Target{Drift: c.Drift, TrimStep: c.TrimStep}).build()
	if err != nil {
		return err
	}
	r.bus.SetRecording(false)
	every := max(c.Every, 1)

	logger.Info("running keepalives", "drift", c.Drift, "frames", c.Frames)
	fmt.Fprintf(out, "%6s %5s %8s %10s %9s\n", "frame", "trim", "windup", "deltaSE0", "error")
	row := func(frame int) {
		errPct := (r.bus.Frequency()/hal.CoreClockHz - 1) * 100
		fmt.Fprintf(out, "%6d %5d %8d %10d %+8.3f%%\n",
			frame, r.bus.Trim(), r.dev.Windup(), r.dev.DeltaSE0(), errPct)
	}
	row(0)
	for frame := 1; frame <= c.Frames; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.host.KeepAlive()
		if frame%every == 0 || frame == c.Frames {
			row(frame)
		}
	}
	fmt.Fprintf(out, "Trim %d after %d trim steps\n", r.bus.Trim(), r.dev.Stats().TrimSteps)
	return nil
}

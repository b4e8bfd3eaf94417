package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/bitusb/device"
	"github.com/ardnew/bitusb/device/class/hid"
	"github.com/ardnew/bitusb/host"
)

// Poll enumerates the device and polls its interrupt endpoints.
type Poll struct {
	Target `embed:""`

	Frames    uint32  `help:"Keepalive frames to run (0 runs until interrupted)" default:"100" env:"BITUSB_FRAMES"`
	Interval  int     `help:"Frames between polls of each endpoint" default:"10" env:"BITUSB_INTERVAL"`
	Endpoints []uint8 `help:"Endpoints to poll (default: every interrupt IN endpoint)" env:"BITUSB_ENDPOINTS"`
	LEDs      uint8   `name:"leds" help:"Keyboard LED output report to send before polling" default:"0" env:"BITUSB_LEDS"`
	Quiet     bool    `help:"Only print reports that differ from an idle report"`
}

// Run is called by Kong when the poll command is executed.
func (c *Poll) Run(logger *slog.Logger, out io.Writer) error {
	ctx, stop := signalContext()
	defer stop()

	r, d, err := c.enumerate(ctx)
	if err != nil {
		return err
	}
	if c.LEDs != 0 {
		if err := d.SetReport(ctx, hid.InterfaceKeyboard, device.ReportTypeOutput, 0, []byte{c.LEDs}); err != nil {
			return fmt.Errorf("keyboard LEDs: %w", err)
		}
		fmt.Fprintf(out, "LEDs %02x\n", r.app.LEDs())
	}

	endpoints := c.Endpoints
	if len(endpoints) == 0 {
		endpoints = d.InEndpoints()
	}
	logger.Info("polling", "address", d.Address(), "endpoints", endpoints, "frames", c.Frames)

	p := host.NewPoller(r.host, d.Address(), c.Interval, endpoints...)
	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx, c.Frames)
	}()

	var sum pollSummary
	for rep := range p.Reports() {
		line, idle := sum.add(rep)
		if !idle || !c.Quiet {
			fmt.Fprintln(out, line)
		}
	}
	if err := <-done; err != nil && ctx.Err() == nil {
		return err
	}

	s := r.host.Stats()
	fmt.Fprintf(out, "Polls %d, failed %d, pointer at (%d, %d), %d key presses\n",
		sum.polls, sum.failed, sum.x, sum.y, sum.presses)
	fmt.Fprintf(out, "Transactions %d (retries %d), keepalives %d, trim %d\n",
		s.Transactions, s.Retries, s.KeepAlives, r.bus.Trim())
	return nil
}

// pollSummary accumulates decoded interrupt reports.
type pollSummary struct {
	polls, failed int
	x, y          int
	presses       int
}

// add records one report and returns its printed form and whether it was
// an idle report.
func (s *pollSummary) add(rep host.Report) (string, bool) {
	s.polls++
	prefix := fmt.Sprintf("frame %5d ep%d", rep.Frame, rep.Endpoint)
	if rep.Err != nil {
		s.failed++
		return fmt.Sprintf("%s error: %v", prefix, rep.Err), false
	}
	switch rep.Endpoint {
	case hid.EndpointMouse:
		var m hid.MouseReport
		if hid.ParseMouseReport(rep.Data, &m) {
			s.x += int(m.X)
			s.y += int(m.Y)
			idle := m == hid.MouseReport{}
			return fmt.Sprintf("%s mouse buttons=%d x=%+d y=%+d wheel=%+d",
				prefix, m.Buttons, m.X, m.Y, m.Wheel), idle
		}
	case hid.EndpointKeyboard:
		var k hid.KeyboardReport
		if hid.ParseKeyboardReport(rep.Data, &k) {
			idle := k == hid.KeyboardReport{}
			for _, key := range k.Keys {
				if key != hid.KeyNone {
					s.presses++
				}
			}
			return fmt.Sprintf("%s keyboard modifiers=%02x keys=% x",
				prefix, k.Modifiers, k.Keys[:]), idle
		}
	}
	return fmt.Sprintf("%s % x", prefix, rep.Data), len(rep.Data) == 0
}

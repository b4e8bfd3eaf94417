package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
	yaml "gopkg.in/yaml.v3"

	"github.com/ardnew/bitusb/device/class/hid"
	"github.com/ardnew/bitusb/device/hal"
	"github.com/ardnew/bitusb/device/hal/sim"
	"github.com/ardnew/bitusb/host"
	"github.com/ardnew/bitusb/internal/configpaths"
	"github.com/ardnew/bitusb/pkg/wire"
)

// Capture enumerates the device with the logic analyzer running and dumps
// every frame the device drove.
type Capture struct {
	Target `embed:""`

	Out      string `help:"Destination YAML file (- for stdout)" default:"capture.yaml" env:"BITUSB_CAPTURE_OUT"`
	Frames   uint32 `help:"Keepalive frames to poll after enumeration" default:"0" env:"BITUSB_FRAMES"`
	Waveform bool   `help:"Print each frame as a line-state trace"`
}

// CaptureFile is the YAML document written by the capture command.
type CaptureFile struct {
	Drift       float64        `yaml:"drift"`
	Trim        uint8          `yaml:"trim"`
	FrequencyHz float64        `yaml:"frequency_hz"`
	Frames      []CaptureFrame `yaml:"frames"`
}

// CaptureFrame is one device transmission.
type CaptureFrame struct {
	Index   int     `yaml:"index"`
	StartNs float64 `yaml:"start_ns"`
	EndNs   float64 `yaml:"end_ns"`
	PID     string  `yaml:"pid,omitempty"`
	Data    string  `yaml:"data,omitempty"`
	Error   string  `yaml:"error,omitempty"`
	// Worst bit period deviation from nominal, in percent.
	MaxBitError float64 `yaml:"max_bit_error_pct"`
	States      string  `yaml:"states"`
}

// Run is called by Kong when the capture command is executed.
func (c *Capture) Run(logger *slog.Logger, out io.Writer) error {
	ctx, stop := signalContext()
	defer stop()

	r, d, err := c.enumerate(ctx)
	if err != nil {
		return err
	}
	if c.Frames > 0 {
		p := host.NewPoller(r.host, d.Address(), hid.PollInterval, d.InEndpoints()...)
		go func() {
			for range p.Reports() {
			}
		}()
		if err := p.Run(ctx, c.Frames); err != nil {
			return err
		}
	}

	doc := NewCaptureFile(r.bus, c.Drift)
	logger.Info("capture complete", "frames", len(doc.Frames), "trim", doc.Trim)

	if c.Waveform {
		printWaveform(out, doc.Frames, isTerminal(out))
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encode capture: %w", err)
	}
	if c.Out == "-" {
		_, err = out.Write(data)
		return err
	}
	if err := configpaths.EnsureDir(c.Out); err != nil {
		return err
	}
	if err := os.WriteFile(c.Out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d frames to %s\n", len(doc.Frames), c.Out)
	return nil
}

// NewCaptureFile converts the frames recorded by bus.
func NewCaptureFile(bus *sim.Bus, drift float64) CaptureFile {
	frames := bus.Frames()
	doc := CaptureFile{
		Drift:       drift,
		Trim:        bus.Trim(),
		FrequencyHz: bus.Frequency(),
		Frames:      make([]CaptureFrame, 0, len(frames)),
	}
	for i, f := range frames {
		cf := CaptureFrame{Index: i, EndNs: f.EndNs, States: stateString(f.States())}
		if len(f.Cells) > 0 {
			cf.StartNs = f.Cells[0].AtNs
		}
		for _, period := range f.BitPeriods() {
			e := math.Abs(period/hal.BitTimeNs-1) * 100
			cf.MaxBitError = max(cf.MaxBitError, e)
		}
		cf.MaxBitError = math.Round(cf.MaxBitError*1000) / 1000
		p, err := wire.DecodePacket(f.States())
		if err != nil {
			cf.Error = err.Error()
		} else {
			cf.PID = p.PID.String()
			if len(p.Data) > 0 {
				cf.Data = fmt.Sprintf("% x", p.Data)
			}
		}
		doc.Frames = append(doc.Frames, cf)
	}
	return doc
}

// stateString renders line states one character each: 0 for SE0, 1 for
// SE1, J and K as themselves.
func stateString(states []wire.LineState) string {
	var b strings.Builder
	b.Grow(len(states))
	for _, s := range states {
		switch s {
		case wire.SE0:
			b.WriteByte('0')
		case wire.SE1:
			b.WriteByte('1')
		default:
			b.WriteString(s.String())
		}
	}
	return b.String()
}

const (
	colorJ     = "\x1b[36m"
	colorK     = "\x1b[33m"
	colorSE0   = "\x1b[31m"
	colorReset = "\x1b[0m"
)

func printWaveform(out io.Writer, frames []CaptureFrame, color bool) {
	for _, f := range frames {
		label := f.PID
		if label == "" {
			label = "?"
		}
		fmt.Fprintf(out, "%4d %-5s ", f.Index, label)
		if !color {
			fmt.Fprintln(out, f.States)
			continue
		}
		var b strings.Builder
		for _, ch := range f.States {
			switch ch {
			case 'J':
				b.WriteString(colorJ)
			case 'K':
				b.WriteString(colorK)
			default:
				b.WriteString(colorSE0)
			}
			b.WriteRune(ch)
		}
		b.WriteString(colorReset)
		fmt.Fprintln(out, b.String())
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

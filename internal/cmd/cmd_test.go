package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"testing"

	toml "github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/ardnew/bitusb/device/class/hid"
	"github.com/ardnew/bitusb/device/hal/sim"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultTarget() Target {
	return Target{TrimStep: sim.DefaultTrimStep, Address: 1, Retries: 3}
}

func TestEnumerateCommand(t *testing.T) {
	var out bytes.Buffer
	c := &Enumerate{Target: defaultTarget(), Raw: true}
	require.NoError(t, c.Run(discard(), &out))

	s := out.String()
	assert.Contains(t, s, "Device 1: ID 1209:c003 "+hid.DefaultManufacturer+" "+hid.DefaultProduct)
	assert.Contains(t, s, "bcdUSB          1.10")
	assert.Contains(t, s, "Configuration 1: 59 bytes, 2 interfaces")
	assert.Contains(t, s, "Interface 0: class 03")
	assert.Contains(t, s, "Interface 1: class 03")
	assert.Contains(t, s, "report descriptor 52 bytes")
	assert.Contains(t, s, "report descriptor 63 bytes")
	assert.Contains(t, s, "Endpoint 81")
	assert.Contains(t, s, "Endpoint 82")
	assert.Contains(t, s, "Raw configuration\n    09 02 3b 00 02 01")
	assert.Contains(t, s, "failures 0")
}

func TestEnumerateCustomIdentity(t *testing.T) {
	var out bytes.Buffer
	target := defaultTarget()
	target.VendorID = 0x1234
	target.ProductID = 0x5678
	target.Product = "widget"
	target.Address = 42
	require.NoError(t, (&Enumerate{Target: target}).Run(discard(), &out))
	assert.Contains(t, out.String(), "Device 42: ID 1234:5678 "+hid.DefaultManufacturer+" widget")
}

func TestEnumerateVendorNames(t *testing.T) {
	ids := filepath.Join(t.TempDir(), "usb.ids")
	require.NoError(t, os.WriteFile(ids, []byte("1209  Generic\n\tc003  bitusb HID\n"), 0o644))

	var out bytes.Buffer
	c := &Enumerate{Target: defaultTarget(), USBIDs: ids}
	require.NoError(t, c.Run(discard(), &out))
	assert.Contains(t, out.String(), "Vendor: Generic\n")
	assert.Contains(t, out.String(), "Product: bitusb HID\n")
}

func TestEnumerateInvalidAddress(t *testing.T) {
	target := defaultTarget()
	target.Address = 0
	err := (&Enumerate{Target: target}).Run(discard(), io.Discard)
	assert.Error(t, err)
}

func TestPollCommand(t *testing.T) {
	var out bytes.Buffer
	c := &Poll{Target: defaultTarget(), Frames: 4 * hid.PollInterval, Interval: hid.PollInterval, LEDs: hid.LEDCapsLock}
	require.NoError(t, c.Run(discard(), &out))

	s := out.String()
	assert.Contains(t, s, "LEDs 02")
	assert.Contains(t, s, "frame    40 ep1 mouse buttons=0 x=+0 y=+1 wheel=+0")
	assert.Contains(t, s, "frame    20 ep2 keyboard modifiers=00 keys=00 00 05 00 00 00")
	assert.Contains(t, s, "Polls 8, failed 0, pointer at (0, 1), 1 key presses")
	assert.Contains(t, s, "keepalives 40")
}

func TestPollQuiet(t *testing.T) {
	var out bytes.Buffer
	c := &Poll{Target: defaultTarget(), Frames: 4 * hid.PollInterval, Interval: hid.PollInterval,
		Endpoints: []uint8{hid.EndpointMouse}, Quiet: true}
	require.NoError(t, c.Run(discard(), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "frame    40 ep1 mouse")
	assert.Contains(t, lines[1], "Polls 4, failed 0, pointer at (0, 1), 0 key presses")
}

func TestPollSummaryError(t *testing.T) {
	var s pollSummary
	line, idle := s.add(hostReport(3, nil, assert.AnError))
	assert.False(t, idle)
	assert.Contains(t, line, "ep3 error")
	assert.Equal(t, 1, s.failed)

	line, idle = s.add(hostReport(3, []byte{1, 2}, nil))
	assert.False(t, idle)
	assert.Contains(t, line, "ep3 01 02")
}

func TestTrimCommand(t *testing.T) {
	var out bytes.Buffer
	c := &Trim{Drift: 0.01, TrimStep: sim.DefaultTrimStep, Frames: 300, Every: 100}
	require.NoError(t, c.Run(discard(), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// Header, frame 0, frames 100, 200, 300 and the summary.
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "trim")
	assert.Regexp(t, `^\s+0\s+16\s`, lines[1])
	assert.Regexp(t, regexp.MustCompile(`^Trim 1[23] after \d+ trim steps$`), lines[5])
}

func TestCaptureCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "capture.yaml")
	var out bytes.Buffer
	c := &Capture{Target: defaultTarget(), Out: path, Waveform: true}
	require.NoError(t, c.Run(discard(), &out))
	assert.Contains(t, out.String(), "Wrote ")
	assert.Contains(t, out.String(), "   0 ACK   KJKJKJKK")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc CaptureFile
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.NotEmpty(t, doc.Frames)
	assert.Equal(t, uint8(16), doc.Trim)

	first := doc.Frames[0]
	assert.Equal(t, "ACK", first.PID)
	assert.Empty(t, first.Error)
	assert.True(t, strings.HasPrefix(first.States, "KJKJKJKK"))
	assert.True(t, strings.HasSuffix(first.States, "00J"))

	var sawDescriptor bool
	for _, f := range doc.Frames {
		assert.Less(t, f.MaxBitError, 1.5, "frame %d", f.Index)
		assert.GreaterOrEqual(t, f.EndNs, f.StartNs)
		if f.PID == "DATA1" && f.Data == "12 01 10 01 00 00 00 08" {
			sawDescriptor = true
		}
	}
	assert.True(t, sawDescriptor)
}

func TestCaptureToStdout(t *testing.T) {
	var out bytes.Buffer
	c := &Capture{Target: defaultTarget(), Out: "-", Frames: hid.PollInterval}
	require.NoError(t, c.Run(discard(), &out))

	var doc CaptureFile
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	assert.NotEmpty(t, doc.Frames)
	assert.Equal(t, 0.0, doc.Drift)
}

func TestPrintWaveformColor(t *testing.T) {
	var out bytes.Buffer
	printWaveform(&out, []CaptureFrame{{Index: 2, PID: "NAK", States: "KJ0"}}, true)
	assert.Equal(t, "   2 NAK   "+colorK+"K"+colorJ+"J"+colorSE0+"0"+colorReset+"\n", out.String())
	assert.False(t, isTerminal(&out))
}

func TestBootloaderCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&Bootloader{Target: defaultTarget()}).Run(discard(), &out))

	s := out.String()
	assert.Contains(t, s, string(sim.OpSetBootMode))
	assert.Contains(t, s, string(sim.OpReset))
	assert.Contains(t, s, "Boot mode: bootloader=true")
	assert.Contains(t, s, "Device no longer responds")
}

func TestFlagKey(t *testing.T) {
	tests := []struct {
		field reflect.StructField
		want  string
	}{
		{reflect.StructField{Name: "Drift"}, "drift"},
		{reflect.StructField{Name: "TrimStep"}, "trim_step"},
		{reflect.StructField{Name: "MaxBitError"}, "max_bit_error"},
		{reflect.StructField{Name: "URLPath"}, "url_path"},
		{reflect.StructField{Name: "VendorID", Tag: `name:"vid"`}, "vid"},
		{reflect.StructField{Name: "X", Tag: `name:"trim-step"`}, "trim_step"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, flagKey(tt.field), tt.field.Name)
	}
}

func TestTemplateFormats(t *testing.T) {
	data, err := Template(reflect.TypeOf(Poll{}), "json")
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, 100.0, m["frames"])
	assert.Equal(t, 0.0025, m["trim_step"])
	assert.Equal(t, 1.0, m["address"])
	assert.Contains(t, m, "vid")
	assert.Contains(t, m, "leds")
	assert.NotContains(t, m, "endpoints")

	data, err = Template(reflect.TypeOf(Trim{}), "yml")
	require.NoError(t, err)
	m = nil
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, 0.01, m["drift"])
	assert.Equal(t, 300, m["frames"])

	data, err = Template(reflect.TypeOf(Capture{}), "toml")
	require.NoError(t, err)
	tree, err := toml.LoadBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "capture.yaml", tree.Get("out"))
	assert.Equal(t, false, tree.Get("waveform"))
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "poll.yaml")
	var out bytes.Buffer
	c := &ConfigInit{Command: "poll", Format: "yaml", Output: dest}
	require.NoError(t, c.Run(discard(), &out))
	assert.Equal(t, dest+"\n", out.String())

	err := c.Run(discard(), io.Discard)
	assert.ErrorContains(t, err, "--force")

	c.Force = true
	require.NoError(t, c.Run(discard(), io.Discard))

	c = &ConfigInit{Command: "nope", Format: "json", Output: filepath.Join(dir, "x.json")}
	assert.Error(t, c.Run(discard(), io.Discard))
}

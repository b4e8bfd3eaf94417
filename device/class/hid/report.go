package hid

// Declared report descriptor lengths. They are baked into the configuration
// descriptor and checked against the encoded descriptors at construction.
const (
	MouseReportDescriptorLength    = 52
	KeyboardReportDescriptorLength = 63
)

// MouseReportDescriptor describes a 4-byte report: three buttons and
// relative X, Y and wheel.
var MouseReportDescriptor = Report{Items: []Item{
	UsagePage{UsagePageGenericDesktop},
	Usage{UsageMouse},
	Collection{Kind: CollectionApplication, Items: []Item{
		Usage{UsagePointer},
		Collection{Kind: CollectionPhysical, Items: []Item{
			UsagePage{UsagePageButton},
			UsageMinimum{1},
			UsageMaximum{3},
			LogicalMinimum{0},
			LogicalMaximum{1},
			ReportCount{3},
			ReportSize{1},
			Input{MainData | MainVar | MainAbs},
			ReportCount{1},
			ReportSize{5},
			Input{MainConst},
			UsagePage{UsagePageGenericDesktop},
			Usage{UsageX},
			Usage{UsageY},
			Usage{UsageWheel},
			LogicalMinimum{-127},
			LogicalMaximum{127},
			ReportSize{8},
			ReportCount{3},
			Input{MainData | MainVar | MainRel},
		}},
	}},
}}

// KeyboardReportDescriptor describes the boot keyboard: an 8-byte input
// report (modifiers, reserved, six keycodes) and a 1-byte LED output report.
var KeyboardReportDescriptor = Report{Items: []Item{
	UsagePage{UsagePageGenericDesktop},
	Usage{UsageKeyboard},
	Collection{Kind: CollectionApplication, Items: []Item{
		UsagePage{UsagePageKeyboard},
		UsageMinimum{0xE0},
		UsageMaximum{0xE7},
		LogicalMinimum{0},
		LogicalMaximum{1},
		ReportSize{1},
		ReportCount{8},
		Input{MainData | MainVar | MainAbs},
		ReportCount{1},
		ReportSize{8},
		Input{MainConst},
		ReportCount{5},
		ReportSize{1},
		UsagePage{UsagePageLEDs},
		UsageMinimum{1},
		UsageMaximum{5},
		Output{MainData | MainVar | MainAbs},
		ReportCount{1},
		ReportSize{3},
		Output{MainConst},
		ReportCount{6},
		ReportSize{8},
		LogicalMinimum{0},
		LogicalMaximum{KeyMax},
		UsagePage{UsagePageKeyboard},
		UsageMinimum{0},
		UsageMaximum{KeyMax},
		Input{MainData | MainArray},
	}},
}}

// KeyboardReport is an 8-byte keyboard input report.
type KeyboardReport struct {
	Modifiers uint8    // Modifier key state
	Reserved  uint8    // Reserved (always 0)
	Keys      [6]uint8 // Up to 6 simultaneous key codes
}

// KeyboardReportSize is the size of a keyboard report in bytes.
const KeyboardReportSize = 8

// MarshalTo writes the keyboard report to buf.
func (r *KeyboardReport) MarshalTo(buf []byte) int {
	if len(buf) < KeyboardReportSize {
		return 0
	}
	buf[0] = r.Modifiers
	buf[1] = r.Reserved
	copy(buf[2:KeyboardReportSize], r.Keys[:])
	return KeyboardReportSize
}

// Clear releases all keys.
func (r *KeyboardReport) Clear() {
	*r = KeyboardReport{}
}

// SetKey adds a key to the first free slot.
// Returns false if no slot is available.
func (r *KeyboardReport) SetKey(key uint8) bool {
	for i := range r.Keys {
		if r.Keys[i] == 0 {
			r.Keys[i] = key
			return true
		}
		if r.Keys[i] == key {
			return true
		}
	}
	return false
}

// ClearKey removes a key from the key array.
func (r *KeyboardReport) ClearKey(key uint8) {
	for i := range r.Keys {
		if r.Keys[i] == key {
			copy(r.Keys[i:], r.Keys[i+1:])
			r.Keys[len(r.Keys)-1] = 0
			return
		}
	}
}

// MouseReport is a 4-byte mouse input report.
type MouseReport struct {
	Buttons uint8 // Button state
	X       int8  // X movement (-127 to 127)
	Y       int8  // Y movement (-127 to 127)
	Wheel   int8  // Wheel movement (-127 to 127)
}

// MouseReportSize is the size of a mouse report in bytes.
const MouseReportSize = 4

// MarshalTo writes the mouse report to buf.
func (r *MouseReport) MarshalTo(buf []byte) int {
	if len(buf) < MouseReportSize {
		return 0
	}
	buf[0] = r.Buttons
	buf[1] = byte(r.X)
	buf[2] = byte(r.Y)
	buf[3] = byte(r.Wheel)
	return MouseReportSize
}

// ParseMouseReport decodes a mouse report. It returns false if data is too
// short.
func ParseMouseReport(data []byte, out *MouseReport) bool {
	if len(data) < MouseReportSize {
		return false
	}
	out.Buttons = data[0]
	out.X = int8(data[1])
	out.Y = int8(data[2])
	out.Wheel = int8(data[3])
	return true
}

// ParseKeyboardReport decodes a keyboard report. It returns false if data is
// too short.
func ParseKeyboardReport(data []byte, out *KeyboardReport) bool {
	if len(data) < KeyboardReportSize {
		return false
	}
	out.Modifiers = data[0]
	out.Reserved = data[1]
	copy(out.Keys[:], data[2:KeyboardReportSize])
	return true
}

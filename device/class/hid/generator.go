package hid

// Mouse generates demo mouse reports: every fourth poll the pointer moves one
// step right, down, left or up, tracing a square.
type Mouse struct {
	polls uint32
}

// Next returns the report for the current poll.
func (m *Mouse) Next() MouseReport {
	m.polls++
	var r MouseReport
	if m.polls&3 != 0 {
		return r
	}
	switch (m.polls >> 2) & 3 {
	case 0:
		r.X = 1
	case 1:
		r.Y = 1
	case 2:
		r.X = -1
	case 3:
		r.Y = -1
	}
	return r
}

// Polls returns the number of reports generated.
func (m *Mouse) Polls() uint32 {
	return m.polls
}

// KeyPeriod is the number of keyboard polls between key presses.
const KeyPeriod = 0x80

// Keyboard generates demo keyboard reports: it presses KeyB for one poll in
// every KeyPeriod. The report for a poll is decided at the end of the
// previous poll.
type Keyboard struct {
	polls  uint32
	report KeyboardReport
}

// Next returns the report for the current poll and prepares the next one.
func (k *Keyboard) Next() KeyboardReport {
	out := k.report
	k.polls++
	if k.polls&(KeyPeriod-1) == 1 {
		k.report.Keys[2] = KeyB
	} else {
		k.report.Keys[2] = KeyNone
	}
	return out
}

// Polls returns the number of reports generated.
func (k *Keyboard) Polls() uint32 {
	return k.polls
}

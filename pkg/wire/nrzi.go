package wire

import "github.com/ardnew/bitusb/pkg"

// MaxOnes is the longest run of one bits allowed before a stuffed zero.
const MaxOnes = 6

// Sync detector bounds. A receiver that wakes late may miss the first few
// preamble bits, so fewer than the full six alternations are accepted.
const (
	SyncMinTransitions = 3
	SyncMaxSamples     = 16
)

// SyncPattern is the 8-bit start-of-packet field, sent least significant
// bit first: seven zeros (alternations) followed by a one.
const SyncPattern = 0x80

// Encoder converts bits to NRZI line states with bit stuffing.
type Encoder struct {
	level LineState
	ones  int
}

// Reset continues encoding from a line currently at level with ones
// consecutive one bits already sent.
func (e *Encoder) Reset(level LineState, ones int) {
	e.level = level
	e.ones = ones
}

// Level returns the last emitted line state.
func (e *Encoder) Level() LineState {
	return e.level
}

// WriteBit emits one bit, plus a stuffed zero if it completes a run of six
// ones.
func (e *Encoder) WriteBit(bit uint8, emit func(LineState)) {
	if bit&1 == 0 {
		e.level = e.level.Toggle()
		e.ones = 0
	} else {
		e.ones++
	}
	emit(e.level)
	if e.ones == MaxOnes {
		e.level = e.level.Toggle()
		e.ones = 0
		emit(e.level)
	}
}

// WriteBits emits the low n bits of v, least significant first.
func (e *Encoder) WriteBits(v uint32, n int, emit func(LineState)) {
	for i := 0; i < n; i++ {
		e.WriteBit(uint8(v>>i)&1, emit)
	}
}

// EOP emits the end-of-packet sequence: two bit times of SE0 then J.
func (e *Encoder) EOP(emit func(LineState)) {
	emit(SE0)
	emit(SE0)
	emit(J)
	e.level = J
	e.ones = 0
}

// Decoder converts NRZI line states back to bits and removes stuffed zeros.
type Decoder struct {
	level LineState
	ones  int
}

// Reset continues decoding from a line at level with ones consecutive one
// bits already received. After a sync field that is (K, 1).
func (d *Decoder) Reset(level LineState, ones int) {
	d.level = level
	d.ones = ones
}

// Feed decodes one differential sample. When stuffed is true the sample
// carried a stuffed zero and no data bit. A run of seven ones returns
// [pkg.ErrBitStuff].
func (d *Decoder) Feed(s LineState) (bit uint8, stuffed bool, err error) {
	if !s.Differential() {
		return 0, false, pkg.ErrSE1
	}
	same := s == d.level
	d.level = s
	if d.ones == MaxOnes {
		d.ones = 0
		if same {
			return 0, false, pkg.ErrBitStuff
		}
		return 0, true, nil
	}
	if same {
		d.ones++
		return 1, false, nil
	}
	d.ones = 0
	return 0, false, nil
}

// Sync recognises the alternating start-of-packet preamble ending in KK.
// The first sample fed must be the K that left the idle state.
type Sync struct {
	level       LineState
	transitions int
	samples     int
}

// Reset prepares the detector for a new packet.
func (s *Sync) Reset() {
	*s = Sync{}
}

// Feed consumes one differential sample and reports whether the preamble
// has completed. Any error means the frame must be abandoned.
func (s *Sync) Feed(st LineState) (done bool, err error) {
	if !st.Differential() {
		return false, pkg.ErrSync
	}
	s.samples++
	if s.samples > SyncMaxSamples {
		return false, pkg.ErrSync
	}
	if s.samples == 1 {
		if st != K {
			return false, pkg.ErrGlitch
		}
		s.level = K
		return false, nil
	}
	if st == s.level {
		if st != K || s.transitions < SyncMinTransitions {
			return false, pkg.ErrSync
		}
		return true, nil
	}
	s.transitions++
	s.level = st
	return false, nil
}

// Transitions returns the number of alternations seen so far.
func (s *Sync) Transitions() int {
	return s.transitions
}

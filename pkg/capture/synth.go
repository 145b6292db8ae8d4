package capture

import (
	"math/bits"

	"github.com/NotCoffee418/sss_trace_analyzer/pkg/serialcfg"
	"go.bug.st/serial"
)

// Synth renders UART characters into an EdgeTrace the way a transmitter
// idling high would put them on the wire.
type Synth struct {
	cfg   serialcfg.Config
	now   float64
	level int
	trace EdgeTrace
}

func NewSynth(begin float64, cfg serialcfg.Config) *Synth {
	return &Synth{
		cfg:   cfg,
		now:   begin,
		level: 1,
		trace: EdgeTrace{InitialLevel: 1, BeginTime: begin},
	}
}

// SetConfig changes the line parameters used for subsequent characters.
func (s *Synth) SetConfig(cfg serialcfg.Config) {
	s.cfg = cfg
}

func (s *Synth) Now() float64 {
	return s.now
}

// Idle holds the line high for the given number of bit periods.
func (s *Synth) Idle(bauds float64) {
	s.setLevel(1)
	s.now += bauds * s.cfg.Period()
}

// IdleUntil holds the line high until t. Earlier times are ignored.
func (s *Synth) IdleUntil(t float64) {
	s.setLevel(1)
	if t > s.now {
		s.now = t
	}
}

// Put sends one character with the parity bit the configuration calls for.
func (s *Synth) Put(data byte) {
	raw := uint16(data) & (1<<uint(s.cfg.DataBits) - 1)
	if s.cfg.Parity != serial.NoParity {
		if parityBit(raw, s.cfg.Parity) {
			raw |= 1 << uint(s.cfg.DataBits)
		}
	}
	s.PutRaw(raw)
}

// PutRaw sends DataAndParityBits bits of raw verbatim, LSB first.
func (s *Synth) PutRaw(raw uint16) {
	period := s.cfg.Period()
	t0 := s.now
	s.edgeTo(0, t0)
	n := s.cfg.DataAndParityBits()
	for i := 0; i < n; i++ {
		s.edgeTo(int(raw>>uint(i))&1, t0+period*float64(1+i))
	}
	s.edgeTo(1, t0+period*float64(1+n))
	s.now = t0 + period*(1+float64(n)+s.cfg.StopBitCount())
}

func (s *Synth) PutAll(data []byte) {
	for _, b := range data {
		s.Put(b)
	}
}

// Trace returns the rendered trace. The capture ends at end or at the
// current time, whichever is later.
func (s *Synth) Trace(end float64) *EdgeTrace {
	out := s.trace
	out.Transitions = append([]float64(nil), s.trace.Transitions...)
	out.EndTime = max(end, s.now)
	return &out
}

func (s *Synth) edgeTo(level int, t float64) {
	if level == s.level {
		return
	}
	s.trace.Transitions = append(s.trace.Transitions, t)
	s.level = level
}

func (s *Synth) setLevel(level int) {
	s.edgeTo(level, s.now)
}

func parityBit(data uint16, p serial.Parity) bool {
	odd := bits.OnesCount16(data)&1 == 1
	switch p {
	case serial.EvenParity:
		return odd
	case serial.OddParity:
		return !odd
	case serial.MarkParity:
		return true
	}
	return false
}

package uart

import (
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/capture"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/serialcfg"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/timing"
)

// Decoder recovers UART characters from edge timing alone. There is no
// sample clock: every edge is placed on the bit grid that starts at the
// falling edge of the start bit.
type Decoder struct {
	epsilon float64
}

func NewDecoder(epsilon float64) *Decoder {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &Decoder{epsilon: epsilon}
}

// Receive decodes the character whose start bit begins at edge start.
// On a framing error Next points two edges on, the earliest edge that
// could be the next start bit.
func (d *Decoder) Receive(trace *capture.EdgeTrace, start int, cfg serialcfg.Config) Result {
	edges := trace.Transitions
	res := Result{Next: len(edges)}
	if start < 0 || start >= len(edges) {
		return res
	}

	t0 := edges[start]
	period := cfg.Period()
	res.Start = t0
	res.End = cfg.FrameEnd(t0)

	state := BitState{Phase: PhaseStart}
	levelBefore := 1
	previous := 0.0

	for i := start + 1; i < len(edges); {
		t := edges[i]
		tb := timing.BaudsSince(t, t0, period)
		levelBefore ^= 1

		if tb < previous+d.epsilon {
			// The glitch window stays anchored to the last real edge
			res.Glitches = append(res.Glitches, t)
			i++
			continue
		}
		previous = tb

	edge:
		for {
			action, next, kind := d.Step(state, tb, levelBefore, cfg)
			switch action {
			case Advance:
				state = next
			case Sample:
				if levelBefore == 1 {
					res.Raw |= 1 << uint(state.Bit)
				}
				state = next
			case Consume:
				i++
				break edge
			case Accept:
				res.Complete = true
				res.Next = i
				return res
			case Reject:
				res.Err = &FramingError{Kind: kind, At: t}
				res.Next = min(start+2, len(edges))
				return res
			}
		}

		if state.Phase == PhaseStop && i >= len(edges) {
			// The capture ended inside a valid stop bit
			res.Complete = true
			res.Next = i
			return res
		}
	}
	return d.finish(res, state, levelBefore^1, trace.EndTime, t0, cfg)
}

// finish settles a character whose edges ran out. The line holds its
// last level until the capture ends, so the end of the capture samples
// every remaining bit when it comes after the full character.
func (d *Decoder) finish(res Result, state BitState, level int, end, t0 float64, cfg serialcfg.Config) Result {
	if state.Phase == PhaseStop {
		res.Complete = true
		return res
	}
	if end < cfg.FrameEnd(t0)-d.epsilon*cfg.Period() {
		return res
	}

	tb := timing.BaudsSince(end, t0, cfg.Period())
	for {
		action, next, kind := d.Step(state, tb, level, cfg)
		switch action {
		case Advance:
			state = next
		case Sample:
			if level == 1 {
				res.Raw |= 1 << uint(state.Bit)
			}
			state = next
		case Accept:
			res.Complete = true
			return res
		case Reject:
			res.Err = &FramingError{Kind: kind, At: end}
			return res
		default:
			return res
		}
	}
}

// Step is the decoder's transition table. Given the current state, the
// edge time in bit periods since the start edge, and the line level up
// to that edge, it returns what to do and the following state.
func (d *Decoder) Step(s BitState, tb float64, levelBefore int, cfg serialcfg.Config) (Action, BitState, FramingErrorKind) {
	eps := d.epsilon
	n := cfg.DataAndParityBits()

	switch s.Phase {
	case PhaseStart:
		if tb < 1-eps || levelBefore == 1 {
			return Reject, s, BrokenStartBit
		}
		return Advance, BitState{Phase: PhaseData, Bit: 0}, 0

	case PhaseData:
		if s.Bit >= n {
			return Advance, BitState{Phase: PhaseStop}, 0
		}
		bitStart := 1 + float64(s.Bit)
		switch {
		case tb < bitStart+eps:
			return Consume, s, 0
		case tb < bitStart+1-eps:
			return Reject, s, EdgeInsideDataBit
		default:
			return Sample, BitState{Phase: PhaseData, Bit: s.Bit + 1}, 0
		}

	default:
		stopStart := 1 + float64(n)
		switch {
		case tb < stopStart+eps:
			return Consume, s, 0
		case tb < stopStart+cfg.StopBitCount()-eps:
			return Reject, s, EdgeInsideStopBit
		case levelBefore == 0:
			return Reject, s, WrongStopLevel
		default:
			return Accept, s, 0
		}
	}
}

package uart

import "fmt"

// DefaultEpsilon is the edge placement tolerance in bit periods.
const DefaultEpsilon = 1.0 / 16.0

// Phase is the part of a character the decoder is waiting to see end.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseData
	PhaseStop
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseData:
		return "data"
	case PhaseStop:
		return "stop"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// BitState tags where the decoder is inside a character. Bit is only
// meaningful for PhaseData.
type BitState struct {
	Phase Phase
	Bit   int
}

// Action is what the decoder does with an edge in a given state.
type Action int

const (
	// Advance sets the state and looks at the same edge again.
	Advance Action = iota
	// Consume moves on to the next edge without changing state.
	Consume
	// Sample records the level before the edge into the current bit.
	Sample
	// Accept ends the character at this edge.
	Accept
	// Reject ends the character with a framing error.
	Reject
)

type FramingErrorKind int

const (
	BrokenStartBit FramingErrorKind = iota
	EdgeInsideDataBit
	EdgeInsideStopBit
	WrongStopLevel
)

func (k FramingErrorKind) String() string {
	switch k {
	case BrokenStartBit:
		return "broken start bit"
	case EdgeInsideDataBit:
		return "transition during data bit"
	case EdgeInsideStopBit:
		return "transition during stop bit(s)"
	case WrongStopLevel:
		return "wrong level during stop bit(s)"
	}
	return fmt.Sprintf("framing error %d", int(k))
}

// FramingError reports a character whose edges do not fit the bit grid.
type FramingError struct {
	Kind FramingErrorKind
	At   float64
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("framing error: %s at t=%v", e.Kind, e.At)
}

// Result is the outcome of decoding one character.
type Result struct {
	// Raw holds the data bits with the parity bit, if any, above them.
	Raw uint16
	// Start and End span the character on the wire.
	Start float64
	End   float64
	// Next is the index of the presumed next start bit, or the trace
	// length when the capture is exhausted.
	Next int
	// Complete is false when the capture ended before the character did.
	Complete bool
	// Glitches lists the times of ignored edges.
	Glitches []float64
	Err      *FramingError
}

// OK reports whether Raw holds a whole, well framed character.
func (r Result) OK() bool {
	return r.Complete && r.Err == nil
}

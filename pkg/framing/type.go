package framing

import "fmt"

// Reserved bytes of the frame layer. Neither FEND nor FESC appears
// literally inside a frame.
const (
	FEND  byte = 0x10
	FESC  byte = 0x1B
	TFEND byte = 0x1C
	TFESC byte = 0x1D
)

type State int

const (
	Idle State = iota
	InFrame
	InFrameEscaped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFrame:
		return "in_frame"
	case InFrameEscaped:
		return "in_frame_escaped"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Frame is a complete, de-escaped frame body.
type Frame struct {
	Data  []byte
	Start float64
	End   float64
}

// Event reports what a pushed byte completed. At most one of Frame and
// Aborted is set. Garbage may accompany either.
type Event struct {
	Frame *Frame
	// Garbage counts bytes seen outside any frame, discarded when the
	// next frame opened.
	Garbage int
	// Aborted is set when an escape was followed by something other
	// than TFEND or TFESC. The partial frame is dropped.
	Aborted   bool
	BadEscape byte
}

package framing

// Framer reassembles byte-stuffed frames from a character stream. It is
// independent of the bit decoder: it only sees accepted characters.
type Framer struct {
	state   State
	buf     []byte
	garbage int
	start   float64
}

func NewFramer() *Framer {
	return &Framer{state: Idle}
}

func (f *Framer) State() State {
	return f.state
}

// PendingGarbage is the number of non-frame bytes seen since the last frame.
func (f *Framer) PendingGarbage() int {
	return f.garbage
}

// Push feeds one character occupying [start, end] into the state machine.
func (f *Framer) Push(b byte, start, end float64) Event {
	switch f.state {
	case Idle:
		return f.idle(b, start)
	case InFrame:
		return f.inFrame(b, end)
	default:
		return f.escaped(b)
	}
}

func (f *Framer) idle(b byte, start float64) Event {
	if b != FEND {
		f.garbage++
		return Event{}
	}
	ev := Event{Garbage: f.garbage}
	f.garbage = 0
	f.buf = f.buf[:0]
	f.start = start
	f.state = InFrame
	return ev
}

func (f *Framer) inFrame(b byte, end float64) Event {
	switch b {
	case FEND:
		data := make([]byte, len(f.buf))
		copy(data, f.buf)
		f.reset()
		return Event{Frame: &Frame{Data: data, Start: f.start, End: end}}
	case FESC:
		f.state = InFrameEscaped
	default:
		f.buf = append(f.buf, b)
	}
	return Event{}
}

func (f *Framer) escaped(b byte) Event {
	switch b {
	case TFEND:
		f.buf = append(f.buf, FEND)
	case TFESC:
		f.buf = append(f.buf, FESC)
	default:
		f.reset()
		return Event{Aborted: true, BadEscape: b}
	}
	f.state = InFrame
	return Event{}
}

func (f *Framer) reset() {
	f.buf = f.buf[:0]
	f.state = Idle
}

// Stuff escapes FEND and FESC inside a frame body.
func Stuff(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+2)
	for _, b := range payload {
		switch b {
		case FEND:
			out = append(out, FESC, TFEND)
		case FESC:
			out = append(out, FESC, TFESC)
		default:
			out = append(out, b)
		}
	}
	return out
}

// Encode wraps a frame body in delimiters, escaping as needed.
func Encode(payload []byte) []byte {
	out := []byte{FEND}
	out = append(out, Stuff(payload)...)
	return append(out, FEND)
}

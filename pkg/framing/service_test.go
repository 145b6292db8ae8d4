package framing

import (
	"bytes"
	"testing"
)

func pushAll(f *Framer, data []byte) []Event {
	var events []Event
	for i, b := range data {
		ev := f.Push(b, float64(i), float64(i)+0.5)
		if ev.Frame != nil || ev.Aborted || ev.Garbage > 0 {
			events = append(events, ev)
		}
	}
	return events
}

func TestEscapeRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x00, 0x01},
		{FEND},
		{FESC},
		{FEND, FESC, TFEND, TFESC, FESC, FEND},
		{0x41, FEND, 0x42, FESC, 0x43},
	}
	for _, p := range payloads {
		f := NewFramer()
		events := pushAll(f, Encode(p))
		if len(events) != 1 || events[0].Frame == nil {
			t.Fatalf("payload % x: events %+v", p, events)
		}
		if !bytes.Equal(events[0].Frame.Data, p) {
			t.Fatalf("payload % x decoded as % x", p, events[0].Frame.Data)
		}
		if f.State() != Idle {
			t.Fatalf("state after frame = %v", f.State())
		}
	}
}

func TestStuffNeverEmitsDelimiter(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	if bytes.IndexByte(Stuff(all), FEND) >= 0 {
		t.Fatalf("stuffed output contains FEND")
	}
}

func TestFrameTimes(t *testing.T) {
	f := NewFramer()
	events := pushAll(f, []byte{FEND, 0x01, 0x02, FEND})
	if len(events) != 1 {
		t.Fatalf("events %+v", events)
	}
	fr := events[0].Frame
	if fr.Start != 0 || fr.End != 3.5 {
		t.Fatalf("frame span [%v, %v]", fr.Start, fr.End)
	}
}

func TestGarbageBetweenFrames(t *testing.T) {
	f := NewFramer()
	stream := append([]byte{0x55, 0x66, 0x77}, Encode([]byte{0x01})...)
	events := pushAll(f, stream)
	if len(events) != 2 {
		t.Fatalf("events %+v", events)
	}
	if events[0].Garbage != 3 || events[0].Frame != nil {
		t.Fatalf("first event %+v", events[0])
	}
	if events[1].Frame == nil || !bytes.Equal(events[1].Frame.Data, []byte{0x01}) {
		t.Fatalf("second event %+v", events[1])
	}
	if f.PendingGarbage() != 0 {
		t.Fatalf("garbage not cleared")
	}
}

func TestPendingGarbage(t *testing.T) {
	f := NewFramer()
	pushAll(f, []byte{0x01, 0x02})
	if f.PendingGarbage() != 2 {
		t.Fatalf("PendingGarbage() = %d", f.PendingGarbage())
	}
}

func TestIllegalEscapeAborts(t *testing.T) {
	f := NewFramer()
	events := pushAll(f, []byte{FEND, 0x01, FESC, 0x42})
	if len(events) != 1 || !events[0].Aborted || events[0].BadEscape != 0x42 {
		t.Fatalf("events %+v", events)
	}
	if f.State() != Idle {
		t.Fatalf("state = %v, want idle", f.State())
	}

	// The aborted body must not leak into the next frame
	events = pushAll(f, Encode([]byte{0x07}))
	if len(events) != 1 || !bytes.Equal(events[0].Frame.Data, []byte{0x07}) {
		t.Fatalf("next frame events %+v", events)
	}
}

func TestDelimiterAfterEscapeAborts(t *testing.T) {
	f := NewFramer()
	events := pushAll(f, []byte{FEND, 0x01, FESC, FEND})
	if len(events) != 1 || !events[0].Aborted || events[0].BadEscape != FEND {
		t.Fatalf("events %+v", events)
	}
}

func TestStateTransitions(t *testing.T) {
	f := NewFramer()
	steps := []struct {
		in   byte
		want State
	}{
		{0x33, Idle},
		{FEND, InFrame},
		{0x01, InFrame},
		{FESC, InFrameEscaped},
		{TFESC, InFrame},
		{FESC, InFrameEscaped},
		{TFEND, InFrame},
		{FEND, Idle},
	}
	for i, s := range steps {
		f.Push(s.in, 0, 0)
		if f.State() != s.want {
			t.Fatalf("step %d (%#x): state %v, want %v", i, s.in, f.State(), s.want)
		}
	}
}

func TestEmptyFrame(t *testing.T) {
	f := NewFramer()
	events := pushAll(f, []byte{FEND, FEND})
	if len(events) != 1 || events[0].Frame == nil || len(events[0].Frame.Data) != 0 {
		t.Fatalf("events %+v", events)
	}
}

package analyzer

import (
	"errors"
	"fmt"

	"github.com/NotCoffee418/sss_trace_analyzer/pkg/capture"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/framing"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/serialcfg"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/uart"
)

var (
	ErrInitialStateMismatch = errors.New("initial states don't match")
	ErrBeginTimeMismatch    = errors.New("begin times don't match")
	ErrEndTimeMismatch      = errors.New("end times don't match")
)

// DoubletalkError reports both directions transmitting at once.
type DoubletalkError struct {
	At float64
	// Channel is the channel whose character overran the other's start.
	Channel int
}

func (e *DoubletalkError) Error() string {
	return fmt.Sprintf("doubletalk at t=%v", e.At)
}

type Options struct {
	// Epsilon is the edge tolerance in bit periods.
	Epsilon float64
	// Initial is the line configuration both captures start with.
	Initial serialcfg.Config
	// DumpCharacters logs every accepted character at debug level.
	DumpCharacters bool
}

func DefaultOptions() Options {
	return Options{
		Epsilon: uart.DefaultEpsilon,
		Initial: serialcfg.Default(),
	}
}

// channel is one direction of the conversation: its trace, its framing
// state and its cursor.
type channel struct {
	id      int
	trace   *capture.EdgeTrace
	framer  *framing.Framer
	next    int
	pending float64
}

func newChannel(id int, trace *capture.EdgeTrace) *channel {
	c := &channel{id: id, trace: trace, framer: framing.NewFramer()}
	c.seek(0)
	return c
}

func (c *channel) exhausted() bool {
	return c.next >= c.trace.Len()
}

// seek moves the cursor; once the edges run out the pending time
// collapses to the end of the capture.
func (c *channel) seek(next int) {
	c.next = next
	if c.exhausted() {
		c.pending = c.trace.EndTime
		return
	}
	c.pending = c.trace.Transitions[next]
}

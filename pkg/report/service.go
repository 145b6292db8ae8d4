package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/NotCoffee418/sss_trace_analyzer/pkg/packet"
)

// Sink receives one report per decoded frame and the end of the run.
type Sink interface {
	Packet(channel int, r packet.Report) error
	End(endTime float64) error
}

// Console prints one line per packet, as the report is meant to be read.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Packet(_ int, r packet.Report) error {
	_, err := fmt.Fprintln(c.w, r.String())
	return err
}

func (c *Console) End(endTime float64) error {
	_, err := fmt.Fprintf(c.w, "%12.6f: End of capture\n", endTime)
	return err
}

// Multi fans reports out to several sinks, stopping at the first error.
type Multi []Sink

func (m Multi) Packet(channel int, r packet.Report) error {
	for _, s := range m {
		if err := s.Packet(channel, r); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) End(endTime float64) error {
	for _, s := range m {
		if err := s.End(endTime); err != nil {
			return err
		}
	}
	return nil
}

// Entry is a report tagged with the channel it arrived on.
type Entry struct {
	Channel int
	Report  packet.Report
}

// Collector keeps every report in memory.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	ended   bool
	endTime float64
}

func (c *Collector) Packet(channel int, r packet.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Entry{Channel: channel, Report: r})
	return nil
}

func (c *Collector) End(endTime float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ended = true
	c.endTime = endTime
	return nil
}

func (c *Collector) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.entries...)
}

// Summaries lists the report summaries in arrival order.
func (c *Collector) Summaries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Report.Summary
	}
	return out
}

// Ended reports whether the run finished, and its end time.
func (c *Collector) Ended() (bool, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended, c.endTime
}

package analyzer

import (
	"fmt"
	"unicode"

	"github.com/NotCoffee418/sss_trace_analyzer/pkg/capture"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/framing"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/packet"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/report"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/serialcfg"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/uart"
	"go.uber.org/zap"
)

// Analyzer decodes two captured directions of a SlowSoftSerial test
// conversation in time order. Both directions share one live line
// configuration, which PARAMS responses replace as they are decoded.
type Analyzer struct {
	logger  *zap.Logger
	decoder *uart.Decoder
	store   *serialcfg.Store
	metrics *Metrics
	sink    report.Sink
	dump    bool
}

func New(opts Options, sink report.Sink, logger *zap.Logger, metrics *Metrics) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Analyzer{
		logger:  logger,
		decoder: uart.NewDecoder(opts.Epsilon),
		store:   serialcfg.NewStore(opts.Initial),
		metrics: metrics,
		sink:    sink,
		dump:    opts.DumpCharacters,
	}
}

// Store exposes the live line configuration.
func (a *Analyzer) Store() *serialcfg.Store {
	return a.store
}

func (a *Analyzer) Metrics() *Metrics {
	return a.metrics
}

// Run decodes both traces to the end. It stops at the first fatal
// condition: mismatched captures, doubletalk or a failing sink.
func (a *Analyzer) Run(trace0, trace1 *capture.EdgeTrace) error {
	if err := checkCompatible(trace0, trace1); err != nil {
		a.logger.Error("Captures cannot be analyzed together", zap.Error(err))
		return err
	}
	if trace0.InitialLevel == 0 {
		a.logger.Info("Detected inverted logic at beginning of trace")
	}

	chans := [2]*channel{newChannel(0, trace0), newChannel(1, trace1)}
	for !chans[0].exhausted() || !chans[1].exhausted() {
		cur, other := chans[1], chans[0]
		if chans[0].pending < chans[1].pending {
			cur, other = chans[0], chans[1]
		}
		if cur.exhausted() {
			cur, other = other, cur
		}

		cfg, _ := a.store.Current()
		charEnd := cfg.FrameEnd(cur.pending)
		if err := a.receive(cur, cfg); err != nil {
			return err
		}
		if !cur.exhausted() && charEnd > other.pending {
			err := &DoubletalkError{At: other.pending, Channel: cur.id}
			a.logger.Error("Doubletalk",
				zap.Float64("t", other.pending),
				zap.Int("channel", cur.id),
				zap.Float64("char_end", charEnd),
			)
			return err
		}
	}

	for _, c := range chans {
		a.flush(c)
	}
	return a.sink.End(trace0.EndTime)
}

func checkCompatible(trace0, trace1 *capture.EdgeTrace) error {
	if trace0.InitialLevel != trace1.InitialLevel {
		return fmt.Errorf("%w: %d vs %d", ErrInitialStateMismatch, trace0.InitialLevel, trace1.InitialLevel)
	}
	if trace0.BeginTime != trace1.BeginTime {
		return fmt.Errorf("%w: %v vs %v", ErrBeginTimeMismatch, trace0.BeginTime, trace1.BeginTime)
	}
	if trace0.EndTime != trace1.EndTime {
		return fmt.Errorf("%w: %v vs %v", ErrEndTimeMismatch, trace0.EndTime, trace1.EndTime)
	}
	return nil
}

// receive decodes exactly one character on c and moves its cursor.
func (a *Analyzer) receive(c *channel, cfg serialcfg.Config) error {
	ch := channelLabel(c.id)
	res := a.decoder.Receive(c.trace, c.next, cfg)
	defer c.seek(res.Next)

	for _, g := range res.Glitches {
		a.metrics.Glitches.WithLabelValues(ch).Inc()
		a.logger.Warn("Glitch transition", zap.Int("channel", c.id), zap.Float64("t", g))
	}

	switch {
	case res.Err != nil:
		a.metrics.FramingErrors.WithLabelValues(ch, res.Err.Kind.String()).Inc()
		a.logger.Warn("Framing error",
			zap.Int("channel", c.id),
			zap.String("kind", res.Err.Kind.String()),
			zap.Float64("t", res.Err.At),
		)
		return nil
	case !res.Complete:
		a.logger.Warn("Capture ended inside a character",
			zap.Int("channel", c.id),
			zap.Float64("t", res.Start),
		)
		return nil
	}

	data, ok := serialcfg.CheckParity(res.Raw, cfg)
	if !ok {
		a.metrics.ParityErrors.WithLabelValues(ch).Inc()
		a.logger.Warn("Parity error",
			zap.Int("channel", c.id),
			zap.Float64("t", res.Start),
			zap.String("raw", fmt.Sprintf("%#x", res.Raw)),
		)
		return nil
	}

	a.metrics.Characters.WithLabelValues(ch).Inc()
	if a.dump {
		a.logger.Debug("Character",
			zap.Int("channel", c.id),
			zap.Float64("t", res.Start),
			zap.String("char", describeChar(data)),
		)
	}
	return a.character(c, data, res.Start, res.End)
}

// character runs one accepted character through framing and, when it
// closes a frame, through the packet interpreter.
func (a *Analyzer) character(c *channel, data byte, start, end float64) error {
	ch := channelLabel(c.id)
	ev := c.framer.Push(data, start, end)

	if ev.Garbage > 0 {
		a.metrics.NonPacketBytes.WithLabelValues(ch).Add(float64(ev.Garbage))
		a.logger.Warn("Non-packet data",
			zap.Int("channel", c.id),
			zap.Int("characters", ev.Garbage),
			zap.Float64("t", start),
		)
	}
	if ev.Aborted {
		a.metrics.AbortedFrames.WithLabelValues(ch).Inc()
		a.logger.Warn("Ill-formed escape sequence, frame discarded",
			zap.Int("channel", c.id),
			zap.String("char", fmt.Sprintf("%#02x", ev.BadEscape)),
			zap.Float64("t", start),
		)
	}
	if ev.Frame == nil {
		return nil
	}

	r := packet.Interpret(ev.Frame)
	a.metrics.Packets.WithLabelValues(ch, r.Status.String()).Inc()
	if r.Status == packet.StatusOK {
		a.metrics.PacketTypes.WithLabelValues(r.Direction.String(), r.Type.String()).Inc()
	}
	if r.CRC != nil {
		a.logger.Warn("BAD CRC",
			zap.Int("channel", c.id),
			zap.String("received", fmt.Sprintf("%#x", r.CRC.Received)),
			zap.String("expected", fmt.Sprintf("%#x", r.CRC.Expected)),
			zap.Float64("t", r.Start),
		)
	}
	if err := a.sink.Packet(c.id, r); err != nil {
		return fmt.Errorf("report sink failed: %w", err)
	}

	if r.Update != nil {
		version := a.store.Commit(*r.Update)
		a.metrics.ConfigCommits.Inc()
		a.logger.Info("Line configuration changed",
			zap.Stringer("config", r.Update),
			zap.Uint64("version", version),
			zap.Float64("t", r.End),
		)
	}
	return nil
}

// flush reports whatever a channel was still holding when its edges ran out.
func (a *Analyzer) flush(c *channel) {
	if n := c.framer.PendingGarbage(); n > 0 {
		a.metrics.NonPacketBytes.WithLabelValues(channelLabel(c.id)).Add(float64(n))
		a.logger.Warn("Non-packet data at end of capture",
			zap.Int("channel", c.id),
			zap.Int("characters", n),
		)
	}
	if c.framer.State() != framing.Idle {
		a.logger.Warn("Capture ended inside a frame", zap.Int("channel", c.id))
	}
}

func describeChar(b byte) string {
	switch {
	case b == framing.FEND:
		return "FEND"
	case b < unicode.MaxASCII && unicode.IsPrint(rune(b)) && !unicode.IsSpace(rune(b)):
		return string(rune(b))
	}
	return fmt.Sprintf("%02x", b)
}

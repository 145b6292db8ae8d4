package packet

import (
	"fmt"
	"math"
	"strings"

	"github.com/NotCoffee418/sss_trace_analyzer/pkg/framing"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/serialcfg"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/timing"
)

// Interpret checks and describes one de-escaped frame.
func Interpret(frame *framing.Frame) Report {
	p := frame.Data
	r := Report{Start: frame.Start, End: frame.End}

	if len(p) < MinLength {
		r.Status = StatusTooShort
		r.Summary = "TOO SHORT"
		return r
	}

	received, expected, ok := TrailerCRC(p)
	if !ok {
		r.Status = StatusBadCRC
		r.Summary = "BAD CRC"
		r.CRC = &CRCMismatch{Received: received, Expected: expected}
		return r
	}

	r.Direction = Direction(p[0])
	r.Type = Type(p[1])
	if !r.Direction.Known() {
		r.Status = StatusUnknownDirection
		r.Summary = "UNK"
		return r
	}

	var sb strings.Builder
	sb.WriteString(r.Direction.String())
	sb.WriteByte(' ')
	sb.WriteString(r.Type.String())
	extra := len(p) - MinLength

	switch r.Type {
	case NOP, Echo:
		if extra > 0 {
			fmt.Fprintf(&sb, " +%d", extra)
		}
	case ID:
		if r.Direction == Response && extra > 0 {
			sb.WriteString(": ")
			// The last payload byte is the sender's string terminator
			for _, ch := range p[2 : len(p)-trailerLength-1] {
				sb.WriteRune(rune(ch))
			}
		}
	case Babble:
		switch r.Direction {
		case Command:
			if len(p) != babbleLength {
				sb.WriteString(" (wrong length)")
			} else {
				fmt.Fprintf(&sb, ": %d", DecodeNibbles(p[2:10]))
			}
		case Response:
			fmt.Fprintf(&sb, ": %d", extra)
		}
	case Params:
		if len(p) != paramsLength {
			sb.WriteString(" (wrong length)")
			break
		}
		params := DecodeParams(p[2:18])
		r.Params = &params
		sb.WriteByte(' ')
		sb.WriteString(params.String())
		if !params.Valid() {
			sb.WriteString(" (invalid)")
		} else if r.Direction == Response {
			// The change takes effect after the response
			cfg, _ := params.Config()
			r.Update = &cfg
		}
	}

	r.Summary = sb.String()
	return r
}

// DecodeParams decodes the 16 payload bytes of a PARAMS packet: the
// rate times 1000, then the configuration word.
func DecodeParams(b []byte) LineParams {
	word := DecodeNibbles(b[8:16])
	lp := LineParams{
		BaudRate: timing.MilliToRate(DecodeNibbles(b[0:8])),
		Word:     word,
	}
	lp.DataBits = widthDecode[(word>>8)&0x0F]
	lp.DataBitsOK = lp.DataBits != 0
	par := parityDecode[word&0x0F]
	lp.Parity, lp.ParityOK = par.parity, par.ok
	stop := stopDecode[(word>>4)&0x0F]
	lp.StopBits, lp.StopBitsOK = stop.stop, stop.ok
	return lp
}

// String renders e.g. "19200.000 baud, 8N1". Invalid fields show as
// 0 (width, stop bits) or X (parity).
func (p LineParams) String() string {
	parity := "X"
	if p.ParityOK {
		parity, _ = serialcfg.ParityLetter(p.Parity)
	}
	stop := "0"
	if p.StopBitsOK {
		stop = serialcfg.FormatStopBits(serialcfg.Config{StopBits: p.StopBits}.StopBitCount())
	}
	return fmt.Sprintf("%s baud, %d%s%s", p.BaudRate.StringFixed(3), p.DataBits, parity, stop)
}

// Build assembles an unescaped packet body with its CRC trailer.
func Build(dir Direction, typ Type, payload []byte) []byte {
	body := make([]byte, 0, 2+len(payload))
	body = append(body, byte(dir), byte(typ))
	body = append(body, payload...)
	return AppendCRC(body)
}

// EncodeParams is the PARAMS payload announcing cfg.
func EncodeParams(cfg serialcfg.Config) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var parityCode, stopCode uint32
	for code, entry := range parityDecode {
		if entry.ok && entry.parity == cfg.Parity {
			parityCode = uint32(code)
		}
	}
	for code, entry := range stopDecode {
		if entry.ok && entry.stop == cfg.StopBits {
			stopCode = uint32(code)
		}
	}
	milli := timing.RateToMilli(cfg.BaudRate)
	if milli > math.MaxUint32 {
		return nil, fmt.Errorf("baud rate %v does not fit a PARAMS packet", cfg.BaudRate)
	}
	widthCode := uint32(cfg.DataBits - 4)
	word := widthCode<<8 | stopCode<<4 | parityCode

	out := EncodeNibbles(uint32(milli))
	return append(out, EncodeNibbles(word)...), nil
}

package packet

import (
	"hash/crc32"
	"testing"

	"github.com/NotCoffee418/sss_trace_analyzer/pkg/framing"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/serialcfg"
	"go.bug.st/serial"
)

func frameOf(p []byte) *framing.Frame {
	return &framing.Frame{Data: p, Start: 0.5, End: 0.75}
}

func TestDecodeNibbles(t *testing.T) {
	cases := []struct {
		in   []byte
		want uint64
	}{
		{[]byte{0, 0, 0, 0, 0, 0, 0, 0}, 0},
		{[]byte{0xD, 0xE, 0xA, 0xD, 0xB, 0xE, 0xE, 0xF}, 0xDEADBEEF},
		{[]byte{1, 2, 3, 4, 5, 6, 7, 8}, 0x12345678},
		// High bits of the first byte are folded back in unmasked
		{[]byte{0x1F, 0, 0, 0, 0, 0, 0, 0}, 0x1F<<28 | 0x10},
		{[]byte{1, 2, 3}, 0},
	}
	for _, c := range cases {
		if got := DecodeNibbles(c.in); got != c.want {
			t.Errorf("DecodeNibbles(% x) = %#x, want %#x", c.in, got, c.want)
		}
	}
}

func TestEncodeNibblesStaysBelowDelimiters(t *testing.T) {
	for _, v := range []uint32{0, 0xFFFFFFFF, 0x10101010, 0x1B1B1B1B} {
		enc := EncodeNibbles(v)
		for _, b := range enc {
			if b > 0x0F {
				t.Fatalf("EncodeNibbles(%#x) produced %#x", v, b)
			}
		}
		if DecodeNibbles(enc) != uint64(v) {
			t.Fatalf("EncodeNibbles(%#x) does not decode back", v)
		}
	}
}

func TestCheckCRC(t *testing.T) {
	body := []byte{byte(Response), byte(ID), 'a', 'b', 'c', 0}
	p := AppendCRC(body)
	if !CheckCRC(p) {
		t.Fatalf("valid CRC rejected")
	}
	if received, expected, _ := TrailerCRC(p); received != uint64(crc32.ChecksumIEEE(body)) || expected != crc32.ChecksumIEEE(body) {
		t.Fatalf("TrailerCRC = %#x, %#x", received, expected)
	}
	for i := range body {
		mutated := append([]byte(nil), p...)
		mutated[i] ^= 0x01
		if CheckCRC(mutated) {
			t.Fatalf("mutating byte %d still passes", i)
		}
	}
	if CheckCRC(p[:9]) {
		t.Fatalf("short packet passes")
	}
}

func TestInterpretSummaries(t *testing.T) {
	params19200, err := EncodeParams(serialcfg.Config{BaudRate: 19200, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit})
	if err != nil {
		t.Fatalf("EncodeParams: %v", err)
	}
	params7E2, err := EncodeParams(serialcfg.Config{BaudRate: 300, DataBits: 7, Parity: serial.EvenParity, StopBits: serial.OnePointFiveStopBits})
	if err != nil {
		t.Fatalf("EncodeParams: %v", err)
	}

	cases := []struct {
		name   string
		packet []byte
		want   string
		status Status
	}{
		{"nop command", Build(Command, NOP, nil), "CMD NOP", StatusOK},
		{"nop response", Build(Response, NOP, nil), "RSP NOP", StatusOK},
		{"nop with payload", Build(Command, NOP, []byte{1, 2, 3}), "CMD NOP +3", StatusOK},
		{"id command", Build(Command, ID, nil), "CMD ID", StatusOK},
		{"id response", Build(Response, ID, []byte("SlowSoftSerial\x00")), "RSP ID: SlowSoftSerial", StatusOK},
		{"echo", Build(Debug, Echo, []byte{9, 9}), "DBG ECHO +2", StatusOK},
		{"babble command", Build(Command, Babble, EncodeNibbles(1000)), "CMD BABBLE: 1000", StatusOK},
		{"babble command wrong length", Build(Command, Babble, []byte{1}), "CMD BABBLE (wrong length)", StatusOK},
		{"babble response", Build(Response, Babble, make([]byte, 5)), "RSP BABBLE: 5", StatusOK},
		{"babble debug", Build(Debug, Babble, nil), "DBG BABBLE", StatusOK},
		{"params command", Build(Command, Params, params19200), "CMD PARAMS 19200.000 baud, 8N1", StatusOK},
		{"params fractional stop", Build(Command, Params, params7E2), "CMD PARAMS 300.000 baud, 7E1.5", StatusOK},
		{"params wrong length", Build(Command, Params, []byte{1, 2}), "CMD PARAMS (wrong length)", StatusOK},
		{"ext", Build(Command, Ext, nil), "CMD EXT", StatusOK},
		{"unknown type", Build(Response, Type(0x09), nil), "RSP UNK", StatusOK},
		{"unknown direction", Build(Direction(7), NOP, nil), "UNK", StatusUnknownDirection},
		{"too short", []byte{0, 0, 1}, "TOO SHORT", StatusTooShort},
		{"empty", nil, "TOO SHORT", StatusTooShort},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := Interpret(frameOf(c.packet))
			if r.Summary != c.want {
				t.Fatalf("Summary = %q, want %q", r.Summary, c.want)
			}
			if r.Status != c.status {
				t.Fatalf("Status = %v, want %v", r.Status, c.status)
			}
			if r.Update != nil && !(r.Direction == Response && r.Type == Params) {
				t.Fatalf("unexpected configuration update from %q", c.name)
			}
		})
	}
}

func TestInterpretBadCRC(t *testing.T) {
	p := Build(Command, NOP, nil)
	p[len(p)-1] ^= 0x01
	r := Interpret(frameOf(p))
	if r.Status != StatusBadCRC || r.Summary != "BAD CRC" {
		t.Fatalf("unexpected report %+v", r)
	}
	if r.CRC == nil || r.CRC.Received == uint64(r.CRC.Expected) {
		t.Fatalf("mismatch details missing: %+v", r.CRC)
	}
}

func TestParamsResponseUpdatesConfig(t *testing.T) {
	want := serialcfg.Config{BaudRate: 19200, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}
	payload, err := EncodeParams(want)
	if err != nil {
		t.Fatalf("EncodeParams: %v", err)
	}

	if r := Interpret(frameOf(Build(Command, Params, payload))); r.Update != nil {
		t.Fatalf("command must not change the configuration")
	}

	r := Interpret(frameOf(Build(Response, Params, payload)))
	if r.Update == nil {
		t.Fatalf("response did not produce an update: %+v", r)
	}
	if *r.Update != want {
		t.Fatalf("update = %+v, want %+v", *r.Update, want)
	}
	if r.Summary != "RSP PARAMS 19200.000 baud, 8N1" {
		t.Fatalf("Summary = %q", r.Summary)
	}
}

func TestParamsFractionalRate(t *testing.T) {
	payload := append(EncodeNibbles(110500), EncodeNibbles(0x413)...)
	r := Interpret(frameOf(Build(Response, Params, payload)))
	if r.Update == nil || r.Update.BaudRate != 110.5 {
		t.Fatalf("unexpected update %+v", r.Update)
	}
	if r.Summary != "RSP PARAMS 110.500 baud, 8N1" {
		t.Fatalf("Summary = %q", r.Summary)
	}
}

func TestParamsInvalidCodesRejected(t *testing.T) {
	cases := []struct {
		name string
		rate uint32
		word uint32
		want string
	}{
		{"all invalid", 9600000, 0x006, "RSP PARAMS 9600.000 baud, 0X0 (invalid)"},
		{"bad width", 9600000, 0x913, "RSP PARAMS 9600.000 baud, 0N1 (invalid)"},
		{"bad parity", 9600000, 0x41F, "RSP PARAMS 9600.000 baud, 8X1 (invalid)"},
		{"bad stop", 9600000, 0x473, "RSP PARAMS 9600.000 baud, 8N0 (invalid)"},
		{"zero rate", 0, 0x413, "RSP PARAMS 0.000 baud, 8N1 (invalid)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			payload := append(EncodeNibbles(c.rate), EncodeNibbles(c.word)...)
			r := Interpret(frameOf(Build(Response, Params, payload)))
			if r.Update != nil {
				t.Fatalf("invalid parameters produced update %+v", r.Update)
			}
			if r.Summary != c.want {
				t.Fatalf("Summary = %q, want %q", r.Summary, c.want)
			}
			if r.Params == nil || r.Params.Valid() {
				t.Fatalf("params should be present and invalid: %+v", r.Params)
			}
			if _, err := r.Params.Config(); err == nil {
				t.Fatalf("Config() should fail for invalid parameters")
			}
		})
	}
}

func TestEncodeParamsRejectsInvalidConfig(t *testing.T) {
	if _, err := EncodeParams(serialcfg.Config{BaudRate: 9600, DataBits: 4}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestEncodeParamsRateRange(t *testing.T) {
	cfg := serialcfg.Default()
	cfg.BaudRate = 4294967.295
	payload, err := EncodeParams(cfg)
	if err != nil {
		t.Fatalf("largest encodable rate rejected: %v", err)
	}
	if got := DecodeNibbles(payload[0:8]); got != 0xFFFFFFFF {
		t.Fatalf("rate field = %#x", got)
	}

	cfg.BaudRate = 5000000
	if _, err := EncodeParams(cfg); err == nil {
		t.Fatalf("a rate above the 32-bit field must be rejected")
	}
}

func TestReportString(t *testing.T) {
	r := Interpret(frameOf(Build(Command, NOP, nil)))
	if got := r.String(); got != "    0.500000: CMD NOP" {
		t.Fatalf("String() = %q", got)
	}
}

package packet

import (
	"fmt"

	"github.com/NotCoffee418/sss_trace_analyzer/pkg/serialcfg"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/timing"
	"github.com/shopspring/decimal"
	"go.bug.st/serial"
)

// MinLength is a direction byte, a type byte and the CRC trailer.
const (
	MinLength     = 2 + trailerLength
	trailerLength = 8
	babbleLength  = 18
	paramsLength  = 26
)

type Direction byte

const (
	Command  Direction = 0
	Response Direction = 1
	Debug    Direction = 2
)

func (d Direction) String() string {
	switch d {
	case Command:
		return "CMD"
	case Response:
		return "RSP"
	case Debug:
		return "DBG"
	}
	return "UNK"
}

func (d Direction) Known() bool {
	return d <= Debug
}

type Type byte

const (
	NOP    Type = 0x00
	ID     Type = 0x01
	Echo   Type = 0x02
	Babble Type = 0x03
	Params Type = 0x04
	Ext    Type = 0x1F
)

func (t Type) String() string {
	switch t {
	case NOP:
		return "NOP"
	case ID:
		return "ID"
	case Echo:
		return "ECHO"
	case Babble:
		return "BABBLE"
	case Params:
		return "PARAMS"
	case Ext:
		return "EXT"
	}
	return "UNK"
}

type Status int

const (
	StatusOK Status = iota
	StatusTooShort
	StatusBadCRC
	StatusUnknownDirection
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTooShort:
		return "too short"
	case StatusBadCRC:
		return "bad crc"
	case StatusUnknownDirection:
		return "unknown direction"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// CRCMismatch carries both sides of a failed trailer check.
type CRCMismatch struct {
	Received uint64
	Expected uint32
}

// LineParams is the body of a PARAMS packet. Each field decoded through
// a lookup table carries its own validity flag.
type LineParams struct {
	BaudRate decimal.Decimal
	Word     uint64

	DataBits   int
	DataBitsOK bool
	Parity     serial.Parity
	ParityOK   bool
	StopBits   serial.StopBits
	StopBitsOK bool
}

func (p LineParams) Valid() bool {
	return p.DataBitsOK && p.ParityOK && p.StopBitsOK && p.BaudRate.IsPositive()
}

// Config converts valid parameters into a line configuration.
func (p LineParams) Config() (serialcfg.Config, error) {
	if !p.Valid() {
		return serialcfg.Config{}, fmt.Errorf("invalid line parameters (word %#x, rate %s)", p.Word, p.BaudRate)
	}
	return serialcfg.Config{
		BaudRate: timing.RateToFloat(p.BaudRate),
		DataBits: p.DataBits,
		Parity:   p.Parity,
		StopBits: p.StopBits,
	}, nil
}

// Report describes one frame handed to the interpreter.
type Report struct {
	Start     float64
	End       float64
	Status    Status
	Direction Direction
	Type      Type
	// Summary is the description without the timestamp prefix.
	Summary string
	CRC     *CRCMismatch
	Params  *LineParams
	// Update is set for a valid PARAMS response: the configuration
	// every later character must be decoded with.
	Update *serialcfg.Config
}

func (r Report) String() string {
	return fmt.Sprintf("%12.6f: %s", r.Start, r.Summary)
}

// 4-bit fields index 16-entry tables; zero entries are invalid codes
var (
	widthDecode  = [16]int{0, 5, 6, 7, 8}
	parityDecode = [16]struct {
		parity serial.Parity
		ok     bool
	}{
		1: {serial.EvenParity, true},
		2: {serial.OddParity, true},
		3: {serial.NoParity, true},
		4: {serial.MarkParity, true},
		5: {serial.SpaceParity, true},
	}
	stopDecode = [16]struct {
		stop serial.StopBits
		ok   bool
	}{
		1: {serial.OneStopBit, true},
		2: {serial.OnePointFiveStopBits, true},
		3: {serial.TwoStopBits, true},
	}
)

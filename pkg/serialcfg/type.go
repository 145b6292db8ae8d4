package serialcfg

import (
	"fmt"
	"math"
	"strconv"

	"github.com/NotCoffee418/sss_trace_analyzer/pkg/timing"
	"go.bug.st/serial"
)

// Config describes the line parameters both directions of a capture share.
type Config struct {
	BaudRate float64
	DataBits int
	Parity   serial.Parity
	StopBits serial.StopBits
}

// Every capture starts out at 9600 8N1
func Default() Config {
	return Config{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// DataAndParityBits is the number of bits sampled between the start
// bit and the stop bits.
func (c Config) DataAndParityBits() int {
	if c.Parity == serial.NoParity {
		return c.DataBits
	}
	return c.DataBits + 1
}

func (c Config) StopBitCount() float64 {
	switch c.StopBits {
	case serial.OnePointFiveStopBits:
		return 1.5
	case serial.TwoStopBits:
		return 2
	default:
		return 1
	}
}

// Period is the duration of one bit in seconds.
func (c Config) Period() float64 {
	return timing.Period(c.BaudRate)
}

// FrameEnd is the time a character whose start bit begins at t0 ends.
func (c Config) FrameEnd(t0 float64) float64 {
	return timing.FrameEnd(t0, c.Period(), c.DataAndParityBits(), c.StopBitCount())
}

func (c Config) Validate() error {
	if !(c.BaudRate > 0) || math.IsInf(c.BaudRate, 0) {
		return fmt.Errorf("baud rate must be positive, got %v", c.BaudRate)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("data bits must be 5..8, got %d", c.DataBits)
	}
	if _, err := ParityLetter(c.Parity); err != nil {
		return err
	}
	switch c.StopBits {
	case serial.OneStopBit, serial.OnePointFiveStopBits, serial.TwoStopBits:
	default:
		return fmt.Errorf("unsupported stop bits %d", c.StopBits)
	}
	return nil
}

// String renders the configuration as e.g. "9600.000 baud, 8N1".
func (c Config) String() string {
	letter, err := ParityLetter(c.Parity)
	if err != nil {
		letter = "X"
	}
	return fmt.Sprintf("%.3f baud, %d%s%s", c.BaudRate, c.DataBits, letter, FormatStopBits(c.StopBitCount()))
}

func FormatStopBits(count float64) string {
	return strconv.FormatFloat(count, 'f', -1, 64)
}

// ParityLetter maps a parity scheme to its conventional letter.
func ParityLetter(p serial.Parity) (string, error) {
	switch p {
	case serial.NoParity:
		return "N", nil
	case serial.EvenParity:
		return "E", nil
	case serial.OddParity:
		return "O", nil
	case serial.MarkParity:
		return "M", nil
	case serial.SpaceParity:
		return "S", nil
	}
	return "", fmt.Errorf("unknown parity %d", p)
}

// ParseParity is the inverse of ParityLetter.
func ParseParity(letter string) (serial.Parity, error) {
	switch letter {
	case "N", "n":
		return serial.NoParity, nil
	case "E", "e":
		return serial.EvenParity, nil
	case "O", "o":
		return serial.OddParity, nil
	case "M", "m":
		return serial.MarkParity, nil
	case "S", "s":
		return serial.SpaceParity, nil
	}
	return serial.NoParity, fmt.Errorf("unknown parity %q", letter)
}

func ParseStopBits(count float64) (serial.StopBits, error) {
	switch count {
	case 1:
		return serial.OneStopBit, nil
	case 1.5:
		return serial.OnePointFiveStopBits, nil
	case 2:
		return serial.TwoStopBits, nil
	}
	return serial.OneStopBit, fmt.Errorf("unsupported stop bit count %v", count)
}

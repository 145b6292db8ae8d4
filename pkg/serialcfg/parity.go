package serialcfg

import (
	"math/bits"

	"go.bug.st/serial"
)

// CheckParity splits a raw sample into its data bits and reports whether
// the parity bit above them agrees with the configured scheme. The data
// bits are returned even when the check fails.
func CheckParity(raw uint16, cfg Config) (byte, bool) {
	parityBit := raw&(1<<uint(cfg.DataBits)) != 0
	data := raw & (1<<uint(cfg.DataBits) - 1)
	evenParity := bits.OnesCount16(data)&1 == 1

	switch cfg.Parity {
	case serial.NoParity:
		return byte(data), true
	case serial.MarkParity:
		return byte(data), parityBit
	case serial.SpaceParity:
		return byte(data), !parityBit
	case serial.EvenParity:
		return byte(data), parityBit == evenParity
	case serial.OddParity:
		return byte(data), parityBit != evenParity
	}
	return byte(data), false
}

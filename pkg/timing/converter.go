package timing

import "github.com/shopspring/decimal"

// Period returns the duration of one bit in seconds.
func Period(baudRate float64) float64 {
	return 1.0 / baudRate
}

// BaudsSince returns how many bit periods separate t from t0.
func BaudsSince(t, t0, period float64) float64 {
	return (t - t0) / period
}

// FrameEnd returns the time a character starting at t0 finishes,
// counting the start bit, data and parity bits and stop bits.
func FrameEnd(t0, period float64, dataAndParityBits int, stopBits float64) float64 {
	return t0 + period*(1+float64(dataAndParityBits)+stopBits)
}

// Rates travel on the wire multiplied by 1000
func MilliToRate(milli uint64) decimal.Decimal {
	return decimal.New(int64(milli), -3)
}

// No fractional loss for any rate the wire can carry
func RateToFloat(rate decimal.Decimal) float64 {
	f, _ := rate.Float64()
	return f
}

// Wire representation of a rate, rounded to the nearest thousandth
func RateToMilli(rate float64) uint64 {
	if rate < 0 {
		return 0
	}
	return uint64(decimal.NewFromFloat(rate).Shift(3).Round(0).IntPart())
}

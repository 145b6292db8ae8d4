package packet

import "hash/crc32"

// DecodeNibbles reads a 32-bit value carried in the low nibbles of 8
// bytes, most significant first. The high bits of the first byte are
// OR'd back in unmasked, as the sender's peer does; a well formed field
// has them clear. Any other length decodes as 0.
func DecodeNibbles(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return uint64(b[0])<<28 |
		uint64(b[1])<<24 |
		uint64(b[2])<<20 |
		uint64(b[3])<<16 |
		uint64(b[4])<<12 |
		uint64(b[5])<<8 |
		uint64(b[6])<<4 |
		uint64(b[7]) |
		uint64(b[0]&0xF0)
}

// EncodeNibbles is the inverse of DecodeNibbles for a 32-bit value.
func EncodeNibbles(v uint32) []byte {
	out := make([]byte, 8)
	for i := range out {
		out[i] = byte(v>>(28-4*uint(i))) & 0x0F
	}
	return out
}

// CheckCRC reports whether the last 8 bytes of p carry the CRC-32 of
// the bytes before them.
func CheckCRC(p []byte) bool {
	_, _, ok := TrailerCRC(p)
	return ok
}

// TrailerCRC returns the received and computed checksums of p.
func TrailerCRC(p []byte) (uint64, uint32, bool) {
	if len(p) < MinLength {
		return 0, 0, false
	}
	body := p[:len(p)-trailerLength]
	received := DecodeNibbles(p[len(p)-trailerLength:])
	expected := crc32.ChecksumIEEE(body)
	return received, expected, received == uint64(expected)
}

// AppendCRC returns body followed by its CRC-32 trailer.
func AppendCRC(body []byte) []byte {
	out := make([]byte, 0, len(body)+trailerLength)
	out = append(out, body...)
	return append(out, EncodeNibbles(crc32.ChecksumIEEE(body))...)
}

package conv

const hexd = "0123456789ABCDEF"

// U8Hex appends two uppercase hex digits (no 0x prefix).
func U8Hex(buf []byte, n uint8) []byte {
	return append(buf, hexd[n>>4], hexd[n&0xF])
}

// Addr renders a 7-bit bus address as "0x20".
func Addr(a uint8) string {
	var b [4]byte
	return string(U8Hex(append(b[:0], '0', 'x'), a))
}

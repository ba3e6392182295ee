//go:build rp2040 || rp2350

package strconvx

// Bases 2..36; anything else formats in base 10.

func FormatInt(i int64, base int) string   { return string(appendInt(nil, i, base)) }
func FormatUint(u uint64, base int) string { return string(appendUint(nil, u, base)) }

// FormatFloat always uses fixed notation; fmt and bitSize are ignored.
func FormatFloat(f float64, fmt byte, prec, bitSize int) string {
	return string(appendFixed(nil, f, prec))
}

func AppendInt(dst []byte, i int64, base int) []byte   { return appendInt(dst, i, base) }
func AppendUint(dst []byte, u uint64, base int) []byte { return appendUint(dst, u, base) }
func AppendFloat(dst []byte, f float64, fmt byte, prec, bitSize int) []byte {
	return appendFixed(dst, f, prec)
}

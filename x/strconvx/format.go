// Package strconvx provides the strconv formatting subset used on MCU
// builds, with matching signatures. Host builds delegate to strconv.
package strconvx

import "math"

const digits = "0123456789abcdefghijklmnopqrstuvwxyz"

func appendUint(dst []byte, u uint64, base int) []byte {
	if base < 2 || base > 36 {
		base = 10
	}
	if u == 0 {
		return append(dst, '0')
	}
	var buf [64]byte
	i := len(buf)
	b := uint64(base)
	for u > 0 {
		i--
		buf[i] = digits[u%b]
		u /= b
	}
	return append(dst, buf[i:]...)
}

func appendInt(dst []byte, v int64, base int) []byte {
	if v < 0 {
		// uint64(-v) is also correct for MinInt64.
		return appendUint(append(dst, '-'), uint64(-v), base)
	}
	return appendUint(dst, uint64(v), base)
}

// maxFixed bounds the values appendFixed can scale into a uint64.
const maxFixed = 1e18

// appendFixed writes f with prec decimals (negative prec means 6, at most 9),
// rounding half away from zero. It is not correctly rounded for every input,
// and magnitudes of 1e18 and above print as Inf.
func appendFixed(dst []byte, f float64, prec int) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, "NaN"...)
	case f >= maxFixed:
		return append(dst, "+Inf"...)
	case f <= -maxFixed:
		return append(dst, "-Inf"...)
	}
	if prec < 0 {
		prec = 6
	}
	if prec > 9 {
		prec = 9
	}
	if f < 0 {
		dst = append(dst, '-')
		f = -f
	}
	pow := uint64(1)
	for i := 0; i < prec; i++ {
		pow *= 10
	}
	scaled := f*float64(pow) + 0.5
	if scaled >= math.MaxUint64/2 {
		return append(dst, "Inf"...)
	}
	n := uint64(scaled)
	dst = appendUint(dst, n/pow, 10)
	if prec == 0 {
		return dst
	}
	var frac [9]byte
	fp := n % pow
	for i := prec - 1; i >= 0; i-- {
		frac[i] = byte('0' + fp%10)
		fp /= 10
	}
	return append(append(dst, '.'), frac[:prec]...)
}

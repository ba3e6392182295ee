// Package fmtx provides fmt-compatible printing for MCU builds, where fmt
// pulls in reflection and a large formatter. Host builds delegate to fmt.
//
// The MCU formatter supports %s %q %v %d %x %X %f %t %% with the 0 flag,
// width and precision. %v prints errors, Stringers and basic kinds only.
// Extra arguments are ignored.
package fmtx

import (
	"unicode/utf8"

	"chirpcode-go/x/strconvx"
)

type spec struct {
	zero    bool
	width   int
	prec    int
	hasPrec bool
}

type printer struct{ buf []byte }

func appendf(dst []byte, format string, args ...any) []byte {
	p := printer{buf: dst}
	ai := 0
	for i := 0; i < len(format); {
		c := format[i]
		if c != '%' {
			p.buf = append(p.buf, c)
			i++
			continue
		}
		i++
		if i < len(format) && format[i] == '%' {
			p.buf = append(p.buf, '%')
			i++
			continue
		}

		var sp spec
		for i < len(format) && format[i] == '0' {
			sp.zero = true
			i++
		}
		i = parseNum(format, i, &sp.width)
		if i < len(format) && format[i] == '.' {
			sp.hasPrec = true
			i = parseNum(format, i+1, &sp.prec)
		}
		if i >= len(format) {
			p.buf = append(p.buf, "%!(NOVERB)"...)
			break
		}
		verb := format[i]
		i++
		if ai >= len(args) {
			p.buf = append(p.buf, '%', '!', verb)
			p.buf = append(p.buf, "(MISSING)"...)
			continue
		}
		p.arg(args[ai], verb, sp)
		ai++
	}
	return p.buf
}

func parseNum(s string, i int, out *int) int {
	n := 0
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	*out = n
	return i
}

func (p *printer) arg(v any, verb byte, sp spec) {
	start := len(p.buf)
	switch verb {
	case 'd':
		if !p.integer(v, 10) {
			p.bad(verb, v)
			return
		}
	case 'x', 'X':
		if !p.integer(v, 16) {
			p.bad(verb, v)
			return
		}
		if verb == 'X' {
			upper(p.buf[start:])
		}
	case 'f', 'F':
		prec := 6
		if sp.hasPrec {
			prec = sp.prec
		}
		switch x := v.(type) {
		case float32:
			p.buf = strconvx.AppendFloat(p.buf, float64(x), 'f', prec, 32)
		case float64:
			p.buf = strconvx.AppendFloat(p.buf, x, 'f', prec, 64)
		default:
			p.bad(verb, v)
			return
		}
	case 't':
		b, ok := v.(bool)
		if !ok {
			p.bad(verb, v)
			return
		}
		p.bool(b)
	case 's', 'v', 'w':
		p.value(v)
		if sp.hasPrec {
			p.truncate(start, sp.prec)
		}
	case 'q':
		var s string
		switch x := v.(type) {
		case string:
			s = x
		case []byte:
			s = string(x)
		default:
			p.bad(verb, v)
			return
		}
		p.quote(s)
	default:
		p.bad(verb, v)
		return
	}
	p.pad(start, sp)
}

func (p *printer) integer(v any, base int) bool {
	switch x := v.(type) {
	case int:
		p.buf = strconvx.AppendInt(p.buf, int64(x), base)
	case int8:
		p.buf = strconvx.AppendInt(p.buf, int64(x), base)
	case int16:
		p.buf = strconvx.AppendInt(p.buf, int64(x), base)
	case int32:
		p.buf = strconvx.AppendInt(p.buf, int64(x), base)
	case int64:
		p.buf = strconvx.AppendInt(p.buf, x, base)
	case uint:
		p.buf = strconvx.AppendUint(p.buf, uint64(x), base)
	case uint8:
		p.buf = strconvx.AppendUint(p.buf, uint64(x), base)
	case uint16:
		p.buf = strconvx.AppendUint(p.buf, uint64(x), base)
	case uint32:
		p.buf = strconvx.AppendUint(p.buf, uint64(x), base)
	case uint64:
		p.buf = strconvx.AppendUint(p.buf, x, base)
	case uintptr:
		p.buf = strconvx.AppendUint(p.buf, uint64(x), base)
	default:
		return false
	}
	return true
}

func (p *printer) value(v any) {
	switch x := v.(type) {
	case nil:
		p.buf = append(p.buf, "<nil>"...)
	case string:
		p.buf = append(p.buf, x...)
	case []byte:
		p.buf = append(p.buf, x...)
	case error:
		p.buf = append(p.buf, x.Error()...)
	case interface{ String() string }:
		p.buf = append(p.buf, x.String()...)
	case bool:
		p.bool(x)
	case float32:
		p.buf = strconvx.AppendFloat(p.buf, float64(x), 'g', -1, 32)
	case float64:
		p.buf = strconvx.AppendFloat(p.buf, x, 'g', -1, 64)
	default:
		if !p.integer(v, 10) {
			p.buf = append(p.buf, '?')
		}
	}
}

func (p *printer) bool(b bool) {
	if b {
		p.buf = append(p.buf, "true"...)
	} else {
		p.buf = append(p.buf, "false"...)
	}
}

func (p *printer) bad(verb byte, v any) {
	p.buf = append(p.buf, '%', '!', verb, '(')
	p.value(v)
	p.buf = append(p.buf, ')')
}

// truncate keeps at most n runes written since start.
func (p *printer) truncate(start, n int) {
	i := start
	for ; n > 0 && i < len(p.buf); n-- {
		_, size := utf8.DecodeRune(p.buf[i:])
		i += size
	}
	p.buf = p.buf[:i]
}

// pad right-aligns the text written since start to sp.width runes. Zero
// padding goes after a leading sign.
func (p *printer) pad(start int, sp spec) {
	fill := sp.width - utf8.RuneCount(p.buf[start:])
	if fill <= 0 {
		return
	}
	ch := byte(' ')
	at := start
	if sp.zero {
		ch = '0'
		if at < len(p.buf) && (p.buf[at] == '-' || p.buf[at] == '+') {
			at++
		}
	}
	for k := 0; k < fill; k++ {
		p.buf = append(p.buf, ch)
	}
	copy(p.buf[at+fill:], p.buf[at:len(p.buf)-fill])
	for k := at; k < at+fill; k++ {
		p.buf[k] = ch
	}
}

func upper(b []byte) {
	for i, c := range b {
		if 'a' <= c && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
}

// quote escapes backslash, quotes and common control characters.
func (p *printer) quote(s string) {
	p.buf = append(p.buf, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '"':
			p.buf = append(p.buf, '\\', c)
		case '\n':
			p.buf = append(p.buf, '\\', 'n')
		case '\r':
			p.buf = append(p.buf, '\\', 'r')
		case '\t':
			p.buf = append(p.buf, '\\', 't')
		default:
			p.buf = append(p.buf, c)
		}
	}
	p.buf = append(p.buf, '"')
}

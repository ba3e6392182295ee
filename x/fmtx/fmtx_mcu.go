//go:build rp2040 || rp2350

package fmtx

import "io"

func Sprintf(format string, a ...any) string { return string(appendf(nil, format, a...)) }

func Fprintf(w io.Writer, format string, a ...any) (int, error) {
	return w.Write(appendf(nil, format, a...))
}

// Errorf does not wrap; %w prints like %v.
func Errorf(format string, a ...any) error {
	return &stringError{Sprintf(format, a...)}
}

func Appendf(b []byte, format string, a ...any) []byte { return appendf(b, format, a...) }

type stringError struct{ s string }

func (e *stringError) Error() string { return e.s }

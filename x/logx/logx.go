// Package logx is the logging seam shared by MCU and host builds.
// *zap.SugaredLogger satisfies Logger directly; MCU builds use Console.
package logx

import (
	"io"

	"chirpcode-go/x/fmtx"
)

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelTag = [...]string{"D", "I", "W", "E"}

// Console prints "[tag] L message" lines. Output goes to Out when set,
// otherwise to the runtime console via println.
type Console struct {
	Tag string
	Min Level
	Out io.Writer
}

func (c *Console) logf(l Level, format string, args ...any) {
	if l < c.Min {
		return
	}
	line := make([]byte, 0, 96)
	line = append(line, '[')
	line = append(line, c.Tag...)
	line = append(line, "] "...)
	line = append(line, levelTag[l]...)
	line = append(line, ' ')
	line = fmtx.Appendf(line, format, args...)
	if c.Out != nil {
		_, _ = c.Out.Write(append(line, '\r', '\n'))
		return
	}
	println(string(line))
}

func (c *Console) Debugf(format string, args ...any) { c.logf(LevelDebug, format, args...) }
func (c *Console) Infof(format string, args ...any)  { c.logf(LevelInfo, format, args...) }
func (c *Console) Warnf(format string, args ...any)  { c.logf(LevelWarn, format, args...) }
func (c *Console) Errorf(format string, args ...any) { c.logf(LevelError, format, args...) }

type nop struct{}

func (nop) Debugf(string, ...any) {}
func (nop) Infof(string, ...any)  {}
func (nop) Warnf(string, ...any)  {}
func (nop) Errorf(string, ...any) {}

// Nop discards everything.
var Nop Logger = nop{}

// Or returns l, or Nop when l is nil.
func Or(l Logger) Logger {
	if l == nil {
		return Nop
	}
	return l
}

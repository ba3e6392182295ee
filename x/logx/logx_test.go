package logx

import (
	"bytes"
	"testing"

	"go.uber.org/zap"
)

// Compile-time check: the host logger plugs in without an adaptor.
var _ Logger = (*zap.SugaredLogger)(nil)

func TestConsoleLevels(t *testing.T) {
	var buf bytes.Buffer
	c := &Console{Tag: "chirp", Min: LevelInfo, Out: &buf}
	c.Debugf("hidden %d", 1)
	c.Warnf("device at 0x%02X gone", 0x20)

	if got, want := buf.String(), "[chirp] W device at 0x20 gone\r\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestConsoleFormatsReadings(t *testing.T) {
	var buf bytes.Buffer
	c := &Console{Tag: "chirp", Min: LevelDebug, Out: &buf}
	c.Debugf("Device 0x%02X - Moisture: %.0f%%, Temperature: %.1f°C", uint8(0x21), float32(50), float32(23.5))

	if got, want := buf.String(), "[chirp] D Device 0x21 - Moisture: 50%, Temperature: 23.5°C\r\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestOr(t *testing.T) {
	if Or(nil) != Nop {
		t.Fatal("Or(nil) should be Nop")
	}
	c := &Console{}
	if Or(c) != Logger(c) {
		t.Fatal("Or should pass through")
	}
}

func TestNewZap(t *testing.T) {
	t.Setenv(LevelEnvVar, "")
	for _, lvl := range []string{"", "debug", "INFO", "warn", "error"} {
		if _, err := NewZap(lvl); err != nil {
			t.Fatalf("NewZap(%q): %v", lvl, err)
		}
	}
	if _, err := NewZap("loud"); err == nil {
		t.Fatal("unknown level accepted")
	}
}

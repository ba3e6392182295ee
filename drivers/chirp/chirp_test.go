package chirp

import (
	"errors"
	"testing"
	"time"

	"chirpcode-go/drivers/chirp/chirptest"
	"chirpcode-go/errcode"

	"github.com/google/go-cmp/cmp"
)

type sleepLog []time.Duration

func (s *sleepLog) sleep(d time.Duration) { *s = append(*s, d) }

func newTestDevice(t *testing.T, addr uint8) (*Device, *chirptest.Bus, *chirptest.Sensor, *sleepLog) {
	t.Helper()
	bus := chirptest.NewBus()
	s := bus.Attach(uint16(addr), &chirptest.Sensor{Capacitance: 373, Temperature: 235, Light: 1200})
	var sl sleepLog
	return New(bus, Config{Address: addr, Sleep: sl.sleep}), bus, s, &sl
}

func TestRead16_WriteSettleRead(t *testing.T) {
	d, bus, _, sl := newTestDevice(t, 0x20)

	v, err := d.ReadTemperature()
	if err != nil {
		t.Fatalf("ReadTemperature: %v", err)
	}
	if v != 235 {
		t.Fatalf("raw = %d, want 235", v)
	}
	want := []chirptest.Tx{
		{Addr: 0x20, W: []byte{RegTemperature}},
		{Addr: 0x20, Rn: 2},
	}
	if diff := cmp.Diff(want, bus.Log()); diff != "" {
		t.Fatalf("transactions (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]time.Duration{ReadSettle}, []time.Duration(*sl)); diff != "" {
		t.Fatalf("sleeps (-want +got):\n%s", diff)
	}
}

func TestRead16_BigEndian(t *testing.T) {
	d, _, s, _ := newTestDevice(t, 0x20)
	s.Capacitance = 0x1234
	v, err := d.ReadCapacitance()
	if err != nil || v != 0x1234 {
		t.Fatalf("ReadCapacitance = %#x, %v", v, err)
	}
}

func TestRead16_Failures(t *testing.T) {
	d, bus, s, _ := newTestDevice(t, 0x20)

	s.FailWrites = true
	if _, err := d.ReadCapacitance(); !errors.Is(err, errcode.WriteFailed) {
		t.Fatalf("select failure: %v", err)
	}
	s.FailWrites = false
	s.FailReads = true
	if _, err := d.ReadCapacitance(); !errors.Is(err, errcode.ReadFailed) {
		t.Fatalf("read failure: %v", err)
	}
	// No retries: 1 tx for the failed select, 2 for the failed read.
	if n := len(bus.Log()); n != 3 {
		t.Fatalf("transactions = %d, want 3", n)
	}
}

func TestProbe(t *testing.T) {
	d, bus, _, _ := newTestDevice(t, 0x20)
	if !d.Probe() {
		t.Fatal("expected probe success")
	}
	bus.Detach(0x20)
	if d.Probe() {
		t.Fatal("expected probe failure on empty address")
	}
}

func TestTriggerPatterns(t *testing.T) {
	d, bus, s, _ := newTestDevice(t, 0x20)
	if err := d.Reset(); err != nil {
		t.Fatal(err)
	}
	if err := d.RequestLight(); err != nil {
		t.Fatal(err)
	}
	want := []chirptest.Tx{
		{Addr: 0x20, W: []byte{RegReset, RegReset}},
		{Addr: 0x20, W: []byte{RegLightRequest, RegLightRequest}},
	}
	if diff := cmp.Diff(want, bus.Log()); diff != "" {
		t.Fatalf("transactions (-want +got):\n%s", diff)
	}
	if s.Resets != 1 || s.LightRequests != 1 {
		t.Fatalf("resets=%d requests=%d", s.Resets, s.LightRequests)
	}
	lux, err := d.ReadLight()
	if err != nil || lux != 1200 {
		t.Fatalf("ReadLight = %d, %v", lux, err)
	}
}

func TestSetAddress(t *testing.T) {
	d, bus, _, sl := newTestDevice(t, 0x20)

	if err := d.SetAddress(0x31); err != nil {
		t.Fatalf("SetAddress: %v", err)
	}
	if d.Address() != 0x31 {
		t.Fatalf("address = %#x", d.Address())
	}
	if bus.At(0x31) == nil {
		t.Fatal("sensor did not move")
	}
	if last := (*sl)[len(*sl)-1]; last != ReconfigureDelay {
		t.Fatalf("last sleep = %v, want %v", last, ReconfigureDelay)
	}
}

func TestSetAddress_Invalid(t *testing.T) {
	d, bus, _, _ := newTestDevice(t, 0x20)
	for _, a := range []uint8{0x00, 0x80, 0xFF} {
		if err := d.SetAddress(a); !errors.Is(err, errcode.InvalidAddress) {
			t.Fatalf("SetAddress(%#x) = %v, want invalid_address", a, err)
		}
	}
	if len(bus.Log()) != 0 {
		t.Fatal("invalid address must not touch the bus")
	}
	if d.Address() != 0x20 {
		t.Fatal("address changed")
	}
}

func TestSetAddress_WriteFailed(t *testing.T) {
	d, _, s, sl := newTestDevice(t, 0x20)
	s.FailWrites = true
	if err := d.SetAddress(0x21); !errors.Is(err, errcode.WriteFailed) {
		t.Fatalf("SetAddress = %v, want write_failed", err)
	}
	if d.Address() != 0x20 || len(*sl) != 0 {
		t.Fatal("failed write must leave the address and skip the delay")
	}
}

func TestDisplayName(t *testing.T) {
	d := New(chirptest.NewBus(), Config{Address: 0x20})
	if got := d.DisplayName(); got != "0x20" {
		t.Fatalf("DisplayName = %q", got)
	}
	d.SetLabel("Fern")
	if got := d.DisplayName(); got != "Fern" || !d.HasLabel() {
		t.Fatalf("DisplayName = %q", got)
	}
	d.SetLabel("")
	if d.HasLabel() {
		t.Fatal("empty label should clear")
	}
}

func TestTruncateLabel(t *testing.T) {
	long := "abcdefghijklmnopqrstuvwxyz0123456789"
	if got := TruncateLabel(long); len(got) != MaxLabelLen || got != long[:MaxLabelLen] {
		t.Fatalf("TruncateLabel = %q", got)
	}
	// 30 ASCII bytes followed by a 2-byte rune straddling the limit.
	mixed := "012345678901234567890123456789é"
	if got := TruncateLabel(mixed); got != mixed[:30] {
		t.Fatalf("rune split: %q", got)
	}
	if got := TruncateLabel("Fern\x00Basil"); got != "Fern" {
		t.Fatalf("NUL not cut: %q", got)
	}
}

func TestNew_DefaultAddress(t *testing.T) {
	if d := New(chirptest.NewBus(), Config{}); d.Address() != AddressDefault {
		t.Fatalf("default address = %#x", d.Address())
	}
}

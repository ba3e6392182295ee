package hostio

import (
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"

	"chirpcode-go/drivers/chirp"
)

// regBus answers a single Chirp at 0x20 with a fixed capacitance.
type regBus struct {
	sel    byte
	speed  physic.Frequency
	closed bool
}

func (b *regBus) Tx(addr uint16, w, r []byte) error {
	if addr != 0x20 {
		return errors.New("nack")
	}
	if len(w) == 1 {
		b.sel = w[0]
	}
	if len(r) == 2 && b.sel == chirp.RegCapacitance {
		r[0], r[1] = 0x01, 0x75
	}
	return nil
}

func (b *regBus) SetSpeed(f physic.Frequency) error { b.speed = f; return nil }
func (b *regBus) String() string                    { return "fake" }
func (b *regBus) Close() error                      { b.closed = true; return nil }

func TestWrap_DrivesChirp(t *testing.T) {
	fb := &regBus{}
	b := Wrap(fb, nil)
	b.Trace = true

	d := chirp.New(b, chirp.Config{Address: 0x20, Sleep: func(_ time.Duration) {}})
	c, err := d.ReadCapacitance()
	if err != nil || c != 0x0175 {
		t.Fatalf("ReadCapacitance = %#x, %v", c, err)
	}
	if chirp.New(b, chirp.Config{Address: 0x21}).Probe() {
		t.Fatal("probe on empty address succeeded")
	}

	if err := b.SetSpeed(100 * physic.KiloHertz); err != nil || fb.speed != 100*physic.KiloHertz {
		t.Fatalf("SetSpeed: %v", err)
	}
	if err := b.Close(); err != nil || !fb.closed {
		t.Fatal("Close not forwarded")
	}
}

//go:build !tinygo

// Package hostio opens a Linux I2C adapter through periph.io and exposes it
// as a tinygo drivers.I2C.
package hostio

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"

	"chirpcode-go/x/logx"
)

var _ drivers.I2C = (*Bus)(nil)

// Bus serialises transactions on one periph bus.
type Bus struct {
	mu  sync.Mutex
	bus i2c.BusCloser
	log logx.Logger
	// Trace logs every transaction at debug level.
	Trace bool
}

// Open initialises the host drivers and opens name ("" picks the first
// registered bus, otherwise e.g. "/dev/i2c-1" or "1").
func Open(name string, log logx.Logger) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}
	return Wrap(b, log), nil
}

// Wrap adapts an already open bus.
func Wrap(b i2c.BusCloser, log logx.Logger) *Bus {
	return &Bus{bus: b, log: logx.Or(log)}
}

// SetSpeed sets the clock, e.g. 100*physic.KiloHertz.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bus.SetSpeed(f)
}

func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.bus.Tx(addr, w, r)
	if b.Trace {
		b.log.Debugf("i2c 0x%02X w=% X r=%d err=%v", addr, w, len(r), err)
	}
	return err
}

func (b *Bus) String() string { return b.bus.String() }

func (b *Bus) Close() error { return b.bus.Close() }

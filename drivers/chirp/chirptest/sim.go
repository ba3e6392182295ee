// Package chirptest simulates Chirp sensors behind a drivers.I2C bus for
// host-side tests.
package chirptest

import (
	"errors"
	"sync"

	"tinygo.org/x/drivers"
)

var (
	ErrNack = errors.New("chirptest: nack")
	ErrBus  = errors.New("chirptest: bus fault")
)

// Compile-time check.
var _ drivers.I2C = (*Bus)(nil)

// Sensor is one simulated device. Fields may be changed between calls by
// the test; the bus holds its own lock while serving a transaction.
type Sensor struct {
	Capacitance uint16
	Temperature uint16
	Light       uint16

	// FailWrites / FailReads force transport errors on this device.
	FailWrites bool
	FailReads  bool

	// Counters.
	Resets        int
	LightRequests int
	LightReads    int

	selected byte
}

// Tx is one recorded transaction.
type Tx struct {
	Addr uint16
	W    []byte
	Rn   int
}

// Bus routes transactions to sensors by address. Unknown addresses NACK.
type Bus struct {
	mu      sync.Mutex
	sensors map[uint16]*Sensor
	log     []Tx
	// Down makes every transaction fail, as with a wedged bus.
	Down bool
}

func NewBus() *Bus { return &Bus{sensors: map[uint16]*Sensor{}} }

// Attach places s at addr and returns it.
func (b *Bus) Attach(addr uint16, s *Sensor) *Sensor {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sensors[addr] = s
	return s
}

// Detach removes the sensor at addr, as if unplugged.
func (b *Bus) Detach(addr uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sensors, addr)
}

// At returns the sensor at addr, or nil.
func (b *Bus) At(addr uint16) *Sensor {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sensors[addr]
}

// Log returns a copy of recorded transactions.
func (b *Bus) Log() []Tx {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Tx(nil), b.log...)
}

// ResetLog clears recorded transactions.
func (b *Bus) ResetLog() {
	b.mu.Lock()
	b.log = nil
	b.mu.Unlock()
}

func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.log = append(b.log, Tx{Addr: addr, W: append([]byte(nil), w...), Rn: len(r)})
	if b.Down {
		return ErrBus
	}
	s := b.sensors[addr]
	if s == nil {
		return ErrNack
	}

	switch {
	case len(w) == 1 && len(r) == 0:
		if s.FailWrites {
			return ErrNack
		}
		s.selected = w[0]
		return nil

	case len(w) == 0 && len(r) == 2:
		if s.FailReads {
			return ErrNack
		}
		var v uint16
		switch s.selected {
		case 0x00:
			v = s.Capacitance
		case 0x04:
			v = s.Light
			s.LightReads++
		case 0x05:
			v = s.Temperature
		}
		r[0], r[1] = byte(v>>8), byte(v)
		return nil

	case len(w) == 2 && len(r) == 0:
		if s.FailWrites {
			return ErrNack
		}
		switch w[0] {
		case 0x01:
			// The device answers at its new address from now on.
			delete(b.sensors, addr)
			b.sensors[uint16(w[1])] = s
		case 0x03:
			s.LightRequests++
		case 0x06:
			s.Resets++
		}
		return nil
	}
	return ErrNack
}

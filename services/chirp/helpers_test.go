package chirpsvc

import (
	"math"
	"testing"
	"time"

	"chirpcode-go/drivers/chirp/chirptest"
	"chirpcode-go/services/labelstore"
	"chirpcode-go/types"

	"go.uber.org/zap/zaptest"
)

// fakeClock advances only when slept on or told to.
type fakeClock struct{ t time.Time }

func newClock() *fakeClock { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Sleep(d time.Duration)   { c.t = c.t.Add(d) }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type event struct {
	Op    string
	Kind  types.Kind
	Addr  uint8
	Name  string
	Value float32
}

type recSink struct{ events []event }

func (s *recSink) Announce(c types.ChannelInfo) {
	s.events = append(s.events, event{Op: "announce", Kind: c.Kind, Addr: c.Address, Name: c.Name})
}

func (s *recSink) Publish(c types.ChannelInfo, v float32) {
	s.events = append(s.events, event{Op: "publish", Kind: c.Kind, Addr: c.Address, Name: c.Name, Value: v})
}

func (s *recSink) Withdraw(c types.ChannelInfo) {
	s.events = append(s.events, event{Op: "withdraw", Kind: c.Kind, Addr: c.Address, Name: c.Name})
}

func (s *recSink) count(op string, k types.Kind, addr uint8) int {
	n := 0
	for _, e := range s.events {
		if e.Op == op && e.Kind == k && e.Addr == addr {
			n++
		}
	}
	return n
}

func (s *recSink) nans(k types.Kind, addr uint8) int {
	n := 0
	for _, e := range s.events {
		if e.Op == "publish" && e.Kind == k && e.Addr == addr && math.IsNaN(float64(e.Value)) {
			n++
		}
	}
	return n
}

// last returns the most recent published value for k at addr.
func (s *recSink) last(k types.Kind, addr uint8) (float32, bool) {
	for i := len(s.events) - 1; i >= 0; i-- {
		e := s.events[i]
		if e.Op == "publish" && e.Kind == k && e.Addr == addr {
			return e.Value, true
		}
	}
	return 0, false
}

type rig struct {
	bus   *chirptest.Bus
	clock *fakeClock
	sink  *recSink
	store *labelstore.Memory
	m     *Manager
}

func newRig(t *testing.T, cfg types.ChirpConfig, addrs ...uint8) *rig {
	t.Helper()
	r := &rig{
		bus:   chirptest.NewBus(),
		clock: newClock(),
		sink:  &recSink{},
		store: labelstore.NewMemory(),
	}
	for _, a := range addrs {
		r.bus.Attach(uint16(a), &chirptest.Sensor{Capacitance: 373, Temperature: 235, Light: 1200})
	}
	r.m = NewManager(cfg, Deps{
		Bus:    r.bus,
		Labels: r.store,
		Sink:   r.sink,
		Log:    zaptest.NewLogger(t).Sugar(),
		Now:    r.clock.Now,
		Sleep:  r.clock.Sleep,
	})
	return r
}

var allKinds = []types.Kind{types.KindMoisture, types.KindTemperature, types.KindLight}

// restart builds a fresh Manager on the rig's bus and label store, as after
// a reboot, and runs Setup.
func (r *rig) restart(t *testing.T, cfg types.ChirpConfig) *Manager {
	t.Helper()
	m := NewManager(cfg, Deps{
		Bus:    r.bus,
		Labels: r.store,
		Sink:   &recSink{},
		Log:    zaptest.NewLogger(t).Sugar(),
		Now:    r.clock.Now,
		Sleep:  r.clock.Sleep,
	})
	m.Setup()
	return m
}

// Package chirpsvc discovers Chirp sensors on one I2C bus, keeps the tracked
// set reconciled with what answers, and publishes their readings.
//
// Everything runs on the caller's goroutine. The Manager is not safe for
// concurrent use; Service drives it from a single loop.
package chirpsvc

import (
	"time"

	"chirpcode-go/drivers/chirp"
	"chirpcode-go/errcode"
	"chirpcode-go/types"
	"chirpcode-go/x/conv"
	"chirpcode-go/x/logx"
	"chirpcode-go/x/timex"

	"tinygo.org/x/drivers"
)

// Deps are the collaborators injected into a Manager.
type Deps struct {
	Bus    drivers.I2C
	Labels LabelStore // nil: labels live in memory only
	Sink   Sink       // nil: readings are dropped
	Log    logx.Logger

	// Test seams. Default to time.Now and time.Sleep.
	Now   func() time.Time
	Sleep func(time.Duration)
}

type Manager struct {
	cfg         types.ChirpConfig
	scanEvery   time.Duration
	updateEvery time.Duration
	enabled     [numKinds]bool

	bus    drivers.I2C
	labels LabelStore
	sink   Sink
	log    logx.Logger
	now    func() time.Time
	sleep  func(time.Duration)

	set   trackedSet
	known [chirp.AddressMax + 1]string // label table, by address

	lastScan   time.Time
	lastUpdate time.Time
}

func NewManager(cfg types.ChirpConfig, d Deps) *Manager {
	cfg = cfg.WithDefaults()
	m := &Manager{
		cfg:         cfg,
		scanEvery:   time.Duration(cfg.ScanIntervalMs) * time.Millisecond,
		updateEvery: time.Duration(cfg.UpdateIntervalMs) * time.Millisecond,
		enabled: [numKinds]bool{
			kMoisture:    cfg.MoistureEnabled(),
			kTemperature: cfg.TemperatureEnabled(),
			kLight:       cfg.LightEnabled(),
		},
		bus:    d.Bus,
		labels: d.Labels,
		sink:   d.Sink,
		log:    logx.Or(d.Log),
		now:    d.Now,
		sleep:  d.Sleep,
	}
	if m.sink == nil {
		m.sink = discardSink{}
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.sleep == nil {
		m.sleep = time.Sleep
	}
	return m
}

func (m *Manager) Config() types.ChirpConfig { return m.cfg }

// Len returns the number of tracked devices.
func (m *Manager) Len() int { return m.set.len() }

// Setup loads labels, runs the initial scan and resets what it found.
func (m *Manager) Setup() {
	m.log.Infof("Setting up Chirp manager...")
	m.loadLabels()
	m.scan()
	for _, e := range m.set.order {
		m.log.Debugf("Resetting Chirp device at 0x%02X", e.dev.Address())
		if err := e.dev.Reset(); err != nil {
			m.log.Warnf("Failed to reset device at 0x%02X: %v", e.dev.Address(), err)
		}
		m.sleep(chirp.ResetGap)
	}
	m.log.Infof("Chirp manager setup complete. Found %d device(s)", m.set.len())
}

// Loop is the periodic callback: rescan on the scan interval, update every
// device on the update interval.
func (m *Manager) Loop() {
	if m.now().Sub(m.lastScan) > m.scanEvery {
		m.scan()
	}
	now := m.now()
	if m.lastUpdate.IsZero() || now.Sub(m.lastUpdate) >= m.updateEvery {
		m.lastUpdate = now
		for _, e := range m.set.order {
			m.update(e)
		}
	}
}

// Rescan runs a scan immediately, outside the timer schedule.
func (m *Manager) Rescan() {
	m.log.Infof("Rescan requested")
	m.scan()
}

// ---------------- Discovery ----------------

func (m *Manager) scan() {
	start, end := m.cfg.ScanStart, m.cfg.ScanEnd
	m.log.Debugf("Scanning I2C bus for Chirp devices (0x%02X - 0x%02X)...", start, end)

	var confirmed [chirp.AddressMax + 1]bool
	for a := int(start); a <= int(end); a++ {
		addr := uint8(a)
		if e := m.set.get(addr); e != nil {
			// Tracked devices are re-probed so a silent one is dropped.
			confirmed[addr] = e.dev.Probe()
		} else {
			probe := chirp.New(m.bus, chirp.Config{Address: addr, Sleep: m.sleep})
			if probe.Probe() {
				confirmed[addr] = true
				m.addDevice(addr)
			}
		}
		m.sleep(chirp.ProbeGap)
	}

	// Devices moved outside the range by set_address are still ours.
	for _, e := range m.set.order {
		if a := e.dev.Address(); a < start || a > end {
			confirmed[a] = e.dev.Probe()
		}
	}

	for i := 0; i < len(m.set.order); {
		e := m.set.order[i]
		if confirmed[e.dev.Address()] {
			i++
			continue
		}
		m.log.Warnf("Device at 0x%02X is no longer responding, removing...", e.dev.Address())
		m.removeDevice(e)
	}

	m.lastScan = m.now()
	m.log.Debugf("Scan complete. Active devices: %d", m.set.len())
}

func (m *Manager) addDevice(addr uint8) {
	m.log.Infof("Adding new Chirp device at address 0x%02X", addr)
	dev := chirp.New(m.bus, chirp.Config{Address: addr, Sleep: m.sleep})
	if l := m.known[addr]; l != "" {
		dev.SetLabel(l)
	}
	e := &entry{dev: dev, bind: newBinding(addr, dev.DisplayName(), m.enabled)}
	m.set.add(e)
	e.bind.announce(m.sink)
	m.log.Debugf("Channels created for device %s", dev.DisplayName())
}

func (m *Manager) removeDevice(e *entry) {
	e.bind.unavailable(m.sink)
	m.set.remove(e)
}

// ---------------- Update cycle ----------------

func (m *Manager) update(e *entry) {
	addr := e.dev.Address()

	if m.enabled[kMoisture] {
		if c, err := e.dev.ReadCapacitance(); err == nil {
			v := chirp.Moisture(c)
			e.bind.publish(m.sink, kMoisture, v)
			m.log.Debugf("Device 0x%02X - Capacitance: %d, Moisture: %.0f%%", addr, c, v)
		} else {
			m.log.Debugf("Device 0x%02X - capacitance read failed: %v", addr, err)
		}
	}

	if m.enabled[kTemperature] {
		if raw, err := e.dev.ReadTemperature(); err == nil {
			v := chirp.Celsius(raw)
			e.bind.publish(m.sink, kTemperature, v)
			m.log.Debugf("Device 0x%02X - Temperature: %.1f°C", addr, v)
		} else {
			m.log.Debugf("Device 0x%02X - temperature read failed: %v", addr, err)
		}
	}

	if m.enabled[kLight] {
		m.updateLight(e)
	}
}

// updateLight runs the two-phase light timer. A pending request is read
// once LightSettle has elapsed and then cleared whatever the outcome.
func (m *Manager) updateLight(e *entry) {
	addr := e.dev.Address()
	if !e.lightPending {
		if err := e.dev.RequestLight(); err != nil {
			m.log.Debugf("Device 0x%02X - light request failed: %v", addr, err)
			return
		}
		e.lightPending = true
		e.lightAt = m.now()
		return
	}
	if m.now().Sub(e.lightAt) < chirp.LightSettle {
		return
	}
	e.lightPending = false
	lux, err := e.dev.ReadLight()
	if err != nil {
		m.log.Debugf("Device 0x%02X - light read failed: %v", addr, err)
		return
	}
	e.bind.publish(m.sink, kLight, float32(lux))
	m.log.Debugf("Device 0x%02X - Light: %d lx (%d ms after request)", addr, lux, timex.Ms(m.now().Sub(e.lightAt)))
}

// ---------------- Operator actions ----------------

// SetAddress reprograms the device at old to answer at next.
func (m *Manager) SetAddress(old, next uint8) error {
	m.log.Infof("Service call: set_address(0x%02X -> 0x%02X)", old, next)

	e := m.set.get(old)
	if e == nil {
		m.log.Errorf("Device at address 0x%02X not found", old)
		return &errcode.E{C: errcode.NotFound, Op: "set_address", Msg: conv.Addr(old)}
	}
	if m.set.get(next) != nil {
		m.log.Errorf("Address 0x%02X is already in use", next)
		return &errcode.E{C: errcode.AddressInUse, Op: "set_address", Msg: conv.Addr(next)}
	}
	if err := e.dev.SetAddress(next); err != nil {
		m.log.Errorf("Failed to change address of 0x%02X: %v", old, err)
		return err
	}

	m.set.move(e, old)
	m.known[next] = e.dev.Label()
	m.known[old] = ""
	e.bind.rebind(m.sink, next, e.dev.DisplayName())
	m.clearRecord(old)
	if !e.dev.HasLabel() {
		// A departed device may have left its label at next.
		m.clearRecord(next)
	}
	m.saveLabels()
	m.log.Infof("Successfully changed device address to 0x%02X", next)
	return nil
}

// SetLabel sets (or, with "", clears) the label of the device at addr.
func (m *Manager) SetLabel(addr uint8, label string) error {
	m.log.Infof("Service call: set_label(0x%02X, '%s')", addr, label)

	e := m.set.get(addr)
	if e == nil {
		m.log.Errorf("Device at address 0x%02X not found", addr)
		return &errcode.E{C: errcode.NotFound, Op: "set_label", Msg: conv.Addr(addr)}
	}
	e.dev.SetLabel(label)
	m.known[addr] = e.dev.Label()
	e.bind.rebind(m.sink, addr, e.dev.DisplayName())
	if !e.dev.HasLabel() {
		m.clearRecord(addr)
	}
	m.saveLabels()
	m.log.Infof("Successfully set label for device at 0x%02X", addr)
	return nil
}

// ---------------- Labels ----------------

func (m *Manager) loadLabels() {
	if m.labels == nil {
		return
	}
	for a := int(m.cfg.ScanStart); a <= int(m.cfg.ScanEnd); a++ {
		addr := uint8(a)
		rec, ok := m.labels.Load(LabelKey(addr))
		if !ok {
			continue
		}
		recAddr, label, ok := DecodeRecord(rec)
		if !ok || recAddr != addr {
			continue
		}
		m.known[addr] = label
		m.log.Debugf("Loaded label '%s' for device 0x%02X", label, addr)
	}
}

// saveLabels writes a record for every tracked, labelled device.
func (m *Manager) saveLabels() {
	if m.labels == nil {
		return
	}
	for _, e := range m.set.order {
		if !e.dev.HasLabel() {
			continue
		}
		addr := e.dev.Address()
		if err := m.labels.Save(LabelKey(addr), EncodeRecord(addr, e.dev.Label())); err != nil {
			m.log.Warnf("Failed to save label for device 0x%02X: %v", addr, err)
			continue
		}
		m.log.Debugf("Saved label '%s' for device 0x%02X", e.dev.Label(), addr)
	}
}

// clearRecord overwrites addr's record with an empty label so a stale
// label is not restored there after a restart.
func (m *Manager) clearRecord(addr uint8) {
	if m.labels == nil {
		return
	}
	if _, ok := m.labels.Load(LabelKey(addr)); !ok {
		return
	}
	if err := m.labels.Save(LabelKey(addr), EncodeRecord(addr, "")); err != nil {
		m.log.Warnf("Failed to clear label record for 0x%02X: %v", addr, err)
	}
}

// ---------------- Diagnostics ----------------

// Devices lists tracked devices in discovery order.
func (m *Manager) Devices() []types.DumpDevice {
	out := make([]types.DumpDevice, 0, m.set.len())
	for _, e := range m.set.order {
		out = append(out, types.DumpDevice{Address: e.dev.Address(), Label: e.dev.Label()})
	}
	return out
}

// Channels returns the channels bound to addr, or nil if untracked.
func (m *Manager) Channels(addr uint8) []types.ChannelInfo {
	e := m.set.get(addr)
	if e == nil {
		return nil
	}
	return e.bind.Channels()
}

// Dump logs and returns the configuration and tracked devices.
func (m *Manager) Dump() types.Dump {
	d := types.Dump{
		ScanIntervalMs: m.cfg.ScanIntervalMs,
		ScanStart:      m.cfg.ScanStart,
		ScanEnd:        m.cfg.ScanEnd,
		Devices:        m.Devices(),
	}
	m.log.Infof("Chirp Component:")
	m.log.Infof("  Scan Interval: %d ms", d.ScanIntervalMs)
	m.log.Infof("  Address Range: 0x%02X - 0x%02X", d.ScanStart, d.ScanEnd)
	m.log.Infof("  Devices Found: %d", len(d.Devices))
	for _, dev := range d.Devices {
		label := dev.Label
		if label == "" {
			label = "(none)"
		}
		m.log.Infof("    - Address: 0x%02X, Label: %s", dev.Address, label)
	}
	return d
}

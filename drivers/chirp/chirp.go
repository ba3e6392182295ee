// Package chirp provides a minimal TinyGo driver for the Chirp I2C soil
// moisture sensor (capacitance, temperature and light).
//
// Light is a two-phase measurement:
//
//	d.RequestLight()          // trigger (one write)
//	// ... wait LightSettle ...
//	lux, err := d.ReadLight() // undefined if read early; not guarded here
//
// The driver never retries. A failed transaction is a missed reading.
package chirp

import (
	"strings"
	"time"
	"unicode/utf8"

	"chirpcode-go/errcode"
	"chirpcode-go/x/conv"
	"chirpcode-go/x/mathx"

	"tinygo.org/x/drivers"
)

// MaxLabelLen is the label capacity of a persisted record, excluding the
// terminating NUL.
const MaxLabelLen = 31

type Config struct {
	// Address defaults to AddressDefault if zero.
	Address uint8
	// Sleep is used for the fixed protocol delays. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Device is one sensor on a shared bus.
type Device struct {
	bus   drivers.I2C
	addr  uint8
	label string
	sleep func(time.Duration)

	// Fixed buffers to avoid per-call heap allocations.
	w [2]byte
	r [2]byte
}

// New creates a Device. It does not touch the bus.
func New(bus drivers.I2C, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = AddressDefault
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Device{bus: bus, addr: addr, sleep: sleep}
}

func (d *Device) Address() uint8 { return d.addr }

// Probe reports whether the device answers a capacitance read. This is the
// sole existence test.
func (d *Device) Probe() bool {
	_, err := d.read16(RegCapacitance)
	return err == nil
}

// Reset writes the reset trigger pattern. Best effort: callers log failures.
func (d *Device) Reset() error {
	return d.write8(RegReset, RegReset)
}

// ReadCapacitance returns the raw moisture capacitance.
func (d *Device) ReadCapacitance() (uint16, error) { return d.read16(RegCapacitance) }

// ReadTemperature returns tenths of °C.
func (d *Device) ReadTemperature() (uint16, error) { return d.read16(RegTemperature) }

// RequestLight starts a light measurement.
func (d *Device) RequestLight() error { return d.write8(RegLightRequest, RegLightRequest) }

// ReadLight returns the result of the last request. Only meaningful once
// LightSettle has elapsed since a successful RequestLight.
func (d *Device) ReadLight() (uint16, error) { return d.read16(RegLightValue) }

// SetAddress reprograms the device address. On success it waits
// ReconfigureDelay and adopts the new address. It does not check that the
// device answers there.
func (d *Device) SetAddress(addr uint8) error {
	if !mathx.Between(addr, AddressMin, AddressMax) {
		return &errcode.E{C: errcode.InvalidAddress, Op: "set address", Msg: conv.Addr(addr)}
	}
	if err := d.write8(RegAddress, addr); err != nil {
		return err
	}
	d.sleep(ReconfigureDelay)
	d.addr = addr
	return nil
}

// SetLabel sets the display label. Labels longer than MaxLabelLen bytes are
// cut on a rune boundary. An empty label clears it.
func (d *Device) SetLabel(label string) { d.label = TruncateLabel(label) }

func (d *Device) Label() string  { return d.label }
func (d *Device) HasLabel() bool { return d.label != "" }

// DisplayName is the label, or the address as "0x20".
func (d *Device) DisplayName() string {
	if d.label != "" {
		return d.label
	}
	return conv.Addr(d.addr)
}

// TruncateLabel cuts s at the first NUL and limits it to MaxLabelLen bytes
// without splitting a rune.
func TruncateLabel(s string) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	if len(s) <= MaxLabelLen {
		return s
	}
	n := MaxLabelLen
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

package types

// Chirp configuration supplied on topic "config/chirp". It is applied once
// at startup and is immutable afterwards.

type ChirpConfig struct {
	ScanIntervalMs   uint32 `json:"scan_interval_ms" yaml:"scan_interval_ms"`
	UpdateIntervalMs uint32 `json:"update_interval_ms" yaml:"update_interval_ms"`
	ScanStart        uint8  `json:"scan_start" yaml:"scan_start"`
	ScanEnd          uint8  `json:"scan_end" yaml:"scan_end"`

	// Per-kind enables; nil means enabled.
	Moisture    *bool `json:"moisture,omitempty" yaml:"moisture,omitempty"`
	Temperature *bool `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Light       *bool `json:"light,omitempty" yaml:"light,omitempty"`
}

const (
	DefaultScanIntervalMs   = 60000
	DefaultUpdateIntervalMs = 2000
	DefaultScanStart        = 0x01
	DefaultScanEnd          = 0x7F
)

// WithDefaults fills zero fields and orders the scan range.
func (c ChirpConfig) WithDefaults() ChirpConfig {
	if c.ScanIntervalMs == 0 {
		c.ScanIntervalMs = DefaultScanIntervalMs
	}
	if c.UpdateIntervalMs == 0 {
		c.UpdateIntervalMs = DefaultUpdateIntervalMs
	}
	if c.ScanStart == 0 {
		c.ScanStart = DefaultScanStart
	}
	if c.ScanEnd == 0 || c.ScanEnd > DefaultScanEnd {
		c.ScanEnd = DefaultScanEnd
	}
	if c.ScanStart > DefaultScanEnd {
		c.ScanStart = DefaultScanEnd
	}
	if c.ScanStart > c.ScanEnd {
		c.ScanStart, c.ScanEnd = c.ScanEnd, c.ScanStart
	}
	return c
}

func enabled(b *bool) bool { return b == nil || *b }

func (c ChirpConfig) MoistureEnabled() bool    { return enabled(c.Moisture) }
func (c ChirpConfig) TemperatureEnabled() bool { return enabled(c.Temperature) }
func (c ChirpConfig) LightEnabled() bool       { return enabled(c.Light) }

// Bool is a helper for building configs in code.
func Bool(v bool) *bool { return &v }

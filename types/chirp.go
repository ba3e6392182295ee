package types

// ---- Telemetry ----

type Kind string

const (
	KindMoisture    Kind = "moisture"
	KindTemperature Kind = "temperature"
	KindLight       Kind = "light"
)

// ChannelInfo is the retained description of one telemetry channel.
type ChannelInfo struct {
	Kind        Kind   `json:"kind"`
	Address     uint8  `json:"address"`
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	DeviceClass string `json:"device_class"`
	StateClass  string `json:"state_class"`
	Icon        string `json:"icon,omitempty"`
	Decimals    int    `json:"accuracy_decimals"`
}

// Reading is one published value. NaN means the device is gone.
type Reading struct {
	Value float32 `json:"value"`
	TSms  int64   `json:"ts_ms"`
}

// ---- Controls (payloads on chirp/control/<verb>) ----

type SetAddress struct {
	Old uint8 `json:"old_address"`
	New uint8 `json:"new_address"`
}

type SetLabel struct {
	Address uint8  `json:"address"`
	Label   string `json:"label"`
}

// ---- Replies ----

type OKReply struct {
	OK bool `json:"ok"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// DumpDevice is one tracked device in a Dump.
type DumpDevice struct {
	Address uint8  `json:"address"`
	Label   string `json:"label"`
}

// Dump is the diagnostic listing returned by the "dump" control.
type Dump struct {
	ScanIntervalMs uint32       `json:"scan_interval_ms"`
	ScanStart      uint8        `json:"scan_start"`
	ScanEnd        uint8        `json:"scan_end"`
	Devices        []DumpDevice `json:"devices"`
}

// ---- Service state (retained on chirp/state) ----

type State struct {
	Level   string `json:"level"` // "idle", "ready", "stopped"
	Status  string `json:"status,omitempty"`
	Devices int    `json:"devices"`
	TSms    int64  `json:"ts_ms"`
}

package config

// Embedded per-device documents. Keys are device IDs placed in the context
// under CtxDeviceKey.

const cfgPico = `{
  "chirp": {
    "scan_interval_ms": 60000,
    "update_interval_ms": 2000,
    "scan_start": 1,
    "scan_end": 127
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
}

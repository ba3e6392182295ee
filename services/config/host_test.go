package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"chirpcode-go/types"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "chirpd.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_File(t *testing.T) {
	p := writeFile(t, `
bus: /dev/i2c-1
label_db: /var/lib/chirp/labels.db
log_level: debug
mqtt:
  enabled: true
  broker: tcp://broker:1883
  prefix: garden
chirp:
  scan_interval_ms: 30000
  scan_start: 0x20
  scan_end: 0x2F
  light: false
`)
	h, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if h.Bus != "/dev/i2c-1" || h.LogLevel != "debug" || h.LabelDB != "/var/lib/chirp/labels.db" {
		t.Fatalf("host = %+v", h)
	}
	if !h.MQTT.Enabled || h.MQTT.Prefix != "garden" || h.MQTT.ClientID != "chirpd" {
		t.Fatalf("mqtt = %+v", h.MQTT)
	}
	want := types.ChirpConfig{
		ScanIntervalMs:   30000,
		UpdateIntervalMs: types.DefaultUpdateIntervalMs,
		ScanStart:        0x20,
		ScanEnd:          0x2F,
		Light:            types.Bool(false),
	}
	if diff := cmp.Diff(want, h.Chirp); diff != "" {
		t.Fatalf("chirp (-want +got):\n%s", diff)
	}
	if h.Tick() != 20*time.Millisecond {
		t.Fatalf("tick = %v", h.Tick())
	}
}

func TestLoad_Defaults(t *testing.T) {
	h, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultHost(), h); diff != "" {
		t.Fatalf("defaults (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHIRP_LOG_LEVEL", "warn")
	t.Setenv("CHIRP_BUS", "2")
	t.Setenv("CHIRP_MQTT_PASSWORD", "s3cret")

	h, err := Load(writeFile(t, "log_level: debug\n"))
	if err != nil {
		t.Fatal(err)
	}
	if h.LogLevel != "warn" || h.Bus != "2" || h.MQTT.Password != "s3cret" {
		t.Fatalf("overrides not applied: %+v", h)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"level":  "log_level: loud\n",
		"range":  "chirp:\n  scan_end: 0x90\n",
		"broker": "mqtt:\n  enabled: true\n  broker: \"\"\n",
		"yaml":   "chirp: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeFile(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

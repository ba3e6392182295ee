//go:build !tinygo

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"chirpcode-go/types"
)

// Host is the chirpd configuration file.
type Host struct {
	// Bus is the periph I2C bus name; empty picks the first one.
	Bus      string `yaml:"bus"`
	LabelDB  string `yaml:"label_db"`
	LogLevel string `yaml:"log_level"`
	TickMs   uint32 `yaml:"tick_ms"`

	MQTT  MQTT              `yaml:"mqtt"`
	Chirp types.ChirpConfig `yaml:"chirp"`
}

type MQTT struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Prefix   string `yaml:"prefix"`
	TLS      bool   `yaml:"tls"`
}

func DefaultHost() *Host {
	return &Host{
		LabelDB:  "chirp-labels.db",
		LogLevel: "info",
		TickMs:   20,
		MQTT: MQTT{
			Broker:   "tcp://localhost:1883",
			ClientID: "chirpd",
			Prefix:   "chirp",
		},
		Chirp: types.ChirpConfig{}.WithDefaults(),
	}
}

// Load reads path over the defaults, applies CHIRP_* environment overrides
// and validates. An empty path yields the defaults.
func Load(path string) (*Host, error) {
	h := DefaultHost()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, h); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	applyEnvOverrides(h)
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	h.Chirp = h.Chirp.WithDefaults()
	return h, nil
}

func applyEnvOverrides(h *Host) {
	if v := os.Getenv("CHIRP_LOG_LEVEL"); v != "" {
		h.LogLevel = v
	}
	if v := os.Getenv("CHIRP_BUS"); v != "" {
		h.Bus = v
	}
	if v := os.Getenv("CHIRP_LABEL_DB"); v != "" {
		h.LabelDB = v
	}
	if v := os.Getenv("CHIRP_MQTT_BROKER"); v != "" {
		h.MQTT.Broker = v
	}
	if v := os.Getenv("CHIRP_MQTT_USERNAME"); v != "" {
		h.MQTT.Username = v
	}
	if v := os.Getenv("CHIRP_MQTT_PASSWORD"); v != "" {
		h.MQTT.Password = v
	}
}

func (h *Host) Validate() error {
	var errs []error
	switch strings.ToLower(h.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q: want debug, info, warn or error", h.LogLevel))
	}
	if h.Chirp.ScanStart > 0x7F || h.Chirp.ScanEnd > 0x7F {
		errs = append(errs, fmt.Errorf("chirp scan range 0x%02X-0x%02X exceeds 7-bit addresses", h.Chirp.ScanStart, h.Chirp.ScanEnd))
	}
	if h.MQTT.Enabled && h.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is required when mqtt is enabled"))
	}
	return errors.Join(errs...)
}

func (h *Host) Tick() time.Duration { return time.Duration(h.TickMs) * time.Millisecond }

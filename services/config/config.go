// Package config publishes service configuration as retained bus messages
// under config/<service>.
//
// MCU builds publish an embedded JSON document selected by device ID.
// Hosts load a YAML file (see host.go) and publish the chirp section.
package config

import (
	"context"
	"errors"

	"chirpcode-go/bus"
	"chirpcode-go/types"
	"chirpcode-go/x/fmtx"
	"chirpcode-go/x/logx"

	"github.com/andreyvit/tinyjson"
)

const configPrefix = "config"

type ctxKey string

// CtxDeviceKey carries the device ID that selects an embedded config.
const CtxDeviceKey ctxKey = "device"

// EmbeddedConfigLookup resolves the raw JSON for a device.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

type ConfigService struct {
	log logx.Logger
}

func NewConfigService(log logx.Logger) *ConfigService {
	return &ConfigService{log: logx.Or(log)}
}

// publishEmbedded publishes each top-level key of the device's document on
// config/<key>.
func (s *ConfigService) publishEmbedded(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errors.New("missing device ID in context")
	}
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return errors.New("no embedded config for device: " + device)
	}
	return PublishRaw(conn, raw)
}

// Start publishes the embedded config in the background.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishEmbedded(ctx, conn); err != nil {
			s.log.Errorf("config: %v", err)
			return
		}
		s.log.Infof("config: published embedded config")
	}()
}

// PublishRaw parses a JSON object and publishes every key as a retained
// map[string]any (or scalar) payload.
func PublishRaw(conn *bus.Connection, doc []byte) (err error) {
	// tinyjson panics on malformed input.
	defer func() {
		if r := recover(); r != nil {
			err = fmtx.Errorf("invalid config JSON: %v", r)
		}
	}()

	r := tinyjson.Raw(doc)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return errors.New("config is not a JSON object")
	}
	for k, v := range m {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), v, true))
	}
	return nil
}

// PublishChirp publishes a typed chirp config on config/chirp.
func PublishChirp(conn *bus.Connection, cfg types.ChirpConfig) {
	conn.Publish(conn.NewMessage(bus.T(configPrefix, "chirp"), cfg, true))
}

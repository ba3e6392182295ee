package types

import "testing"

func TestChirpConfig_WithDefaults(t *testing.T) {
	c := ChirpConfig{}.WithDefaults()
	if c.ScanIntervalMs != 60000 || c.UpdateIntervalMs != 2000 || c.ScanStart != 0x01 || c.ScanEnd != 0x7F {
		t.Fatalf("defaults = %+v", c)
	}
	if !c.MoistureEnabled() || !c.TemperatureEnabled() || !c.LightEnabled() {
		t.Fatal("kinds should default to enabled")
	}

	c = ChirpConfig{ScanStart: 0x40, ScanEnd: 0x20, Light: Bool(false)}.WithDefaults()
	if c.ScanStart != 0x20 || c.ScanEnd != 0x40 {
		t.Fatalf("range not ordered: %+v", c)
	}
	if c.LightEnabled() {
		t.Fatal("light should be disabled")
	}

	c = ChirpConfig{ScanStart: 0x90, ScanEnd: 0xF0}.WithDefaults()
	if c.ScanStart != 0x7F || c.ScanEnd != 0x7F {
		t.Fatalf("range not capped: %+v", c)
	}
}

package chirp

import "testing"

func TestMoisture(t *testing.T) {
	if got := Moisture(373); got != 50 {
		t.Fatalf("Moisture(373) = %v, want 50", got)
	}
	for _, c := range []uint16{0, 100, 262, 263} {
		if got := Moisture(c); got != 0 {
			t.Errorf("Moisture(%d) = %v, want 0", c, got)
		}
	}
	for _, c := range []uint16{483, 484, 1000, 0xFFFF} {
		if got := Moisture(c); got != 100 {
			t.Errorf("Moisture(%d) = %v, want 100", c, got)
		}
	}
}

func TestMoisture_Monotonic(t *testing.T) {
	prev := Moisture(0)
	for c := 1; c <= 0xFFFF; c++ {
		m := Moisture(uint16(c))
		if m < prev {
			t.Fatalf("Moisture decreased at %d: %v < %v", c, m, prev)
		}
		prev = m
	}
}

func TestCelsius(t *testing.T) {
	cases := map[uint16]float32{0: 0, 235: 23.5, 100: 10, 1: 0.1}
	for raw, want := range cases {
		if got := Celsius(raw); got != want {
			t.Errorf("Celsius(%d) = %v, want %v", raw, got, want)
		}
	}
}

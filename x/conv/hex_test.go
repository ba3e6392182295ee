package conv

import "testing"

func TestAddr(t *testing.T) {
	for in, want := range map[uint8]string{0x01: "0x01", 0x20: "0x20", 0x7F: "0x7F", 0xAB: "0xAB"} {
		if got := Addr(in); got != want {
			t.Errorf("Addr(%#x) = %q, want %q", in, got, want)
		}
	}
}

func TestU8Hex(t *testing.T) {
	if got := string(U8Hex([]byte("chirp_label_"), 0x2a)); got != "chirp_label_2A" {
		t.Fatalf("U8Hex = %q", got)
	}
}

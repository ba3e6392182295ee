//go:build cgo

package labelstore

import (
	"testing"

	"tinygo.org/x/tinyfs"

	"github.com/google/go-cmp/cmp"
)

func TestFlash(t *testing.T) {
	dev := tinyfs.NewMemoryDevice(256, 4096, 64)
	f, err := OpenFlash(dev)
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, f)
	if err := f.Save("chirp_label_20", []byte{0x20, 'B', 0}); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	// Remounting the same device keeps the last record.
	f, err = OpenFlash(dev)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, ok := f.Load("chirp_label_20")
	if !ok {
		t.Fatal("record lost across remount")
	}
	if diff := cmp.Diff([]byte{0x20, 'B', 0}, got); diff != "" {
		t.Fatalf("record (-want +got):\n%s", diff)
	}
}

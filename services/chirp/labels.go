package chirpsvc

import (
	"bytes"

	"chirpcode-go/drivers/chirp"
	"chirpcode-go/x/conv"
)

// LabelStore persists label records across restarts.
type LabelStore interface {
	Load(key string) ([]byte, bool)
	Save(key string, rec []byte) error
}

const (
	labelNamespace = "chirp_label_"

	// address (1) + label buffer (32, NUL terminated).
	labelBufLen = chirp.MaxLabelLen + 1
	RecordSize  = 1 + labelBufLen
)

// LabelKey is the store key for addr, e.g. "chirp_label_20".
func LabelKey(addr uint8) string {
	b := make([]byte, 0, len(labelNamespace)+2)
	return string(conv.U8Hex(append(b, labelNamespace...), addr))
}

// EncodeRecord lays out a fixed-size record. Long labels are truncated.
func EncodeRecord(addr uint8, label string) []byte {
	rec := make([]byte, RecordSize)
	rec[0] = addr
	copy(rec[1:labelBufLen], chirp.TruncateLabel(label))
	return rec
}

// DecodeRecord parses a record. ok is false for short or empty records.
func DecodeRecord(rec []byte) (addr uint8, label string, ok bool) {
	if len(rec) < 2 {
		return 0, "", false
	}
	buf := rec[1:]
	if len(buf) > labelBufLen {
		buf = buf[:labelBufLen]
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	if len(buf) == 0 {
		return rec[0], "", false
	}
	return rec[0], chirp.TruncateLabel(string(buf)), true
}

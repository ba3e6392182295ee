package chirp

import "time"

// Fixed protocol delays. They are not configurable.
const (
	// Between the register-select write and the 2-byte read.
	ReadSettle = 20 * time.Millisecond
	// After a successful address write.
	ReconfigureDelay = 50 * time.Millisecond
	// Between consecutive resets at startup.
	ResetGap = 50 * time.Millisecond
	// Between probes during a scan.
	ProbeGap = 10 * time.Millisecond
	// Between a light request and the light read.
	LightSettle = 1000 * time.Millisecond
)

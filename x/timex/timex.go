package timex

import "time"

// UnixMs returns t as Unix milliseconds.
func UnixMs(t time.Time) int64 { return t.UnixMilli() }

// Ms converts a duration to whole milliseconds.
func Ms(d time.Duration) int64 { return int64(d / time.Millisecond) }

package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// MicrosToNanos converts a microsecond count to a nanosecond period,
// the unit TinyGo PWM peripherals expect.
func MicrosToNanos(us uint32) uint64 { return uint64(us) * uint64(time.Microsecond) }

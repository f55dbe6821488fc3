package ramp

import (
	"time"

	"rgbled-go/x/mathx"
)

// Level is any small unsigned output level.
type Level interface{ ~uint8 | ~uint16 }

// Tick waits for d and reports whether to continue (false => cancelled).
type Tick func(d time.Duration) bool

// Linear walks from cur to to (capped at top) in steps equal increments,
// calling set for each level that changes and finally for the target. It
// runs on the caller's goroutine; tick supplies timing and cancellation.
// steps==0 or durationMs==0 snaps to the target. It reports false if tick
// cancelled the ramp before the target was set.
func Linear[T Level](cur, to, top T, durationMs uint32, steps uint16, tick Tick, set func(T)) bool {
	to = mathx.Min(to, top)
	if steps == 0 || durationMs == 0 {
		set(to)
		return true
	}
	stepDur := time.Duration(mathx.Max(durationMs/uint32(steps), 1)) * time.Millisecond

	delta := int32(to) - int32(cur)
	n := int32(steps)
	acc, lvl := int32(0), int32(cur)
	for i := uint16(1); i < steps; i++ {
		if !tick(stepDur) {
			return false
		}
		acc += delta
		if inc := acc / n; inc != 0 {
			acc -= inc * n
			lvl = mathx.Clamp(lvl+inc, 0, int32(top))
			set(T(lvl))
		}
	}
	if !tick(stepDur) {
		return false
	}
	set(to)
	return true
}

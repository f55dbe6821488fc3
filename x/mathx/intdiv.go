package mathx

// Scale maps v from [0..from] onto [0..to] with a 64-bit intermediate,
// saturating at to. A zero from yields 0.
func Scale[T ~uint8 | ~uint16 | ~uint32](v, from, to T) T {
	if from == 0 {
		return 0
	}
	if v >= from {
		return to
	}
	return T(uint64(v) * uint64(to) / uint64(from))
}

// RoundDiv returns floor((a + b/2)/b), classic rounding for positives.
func RoundDiv[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}

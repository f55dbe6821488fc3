package ramp

import (
	"testing"
	"time"
)

func TestLinearSnap(t *testing.T) {
	var got []uint8
	ok := Linear[uint8](10, 200, 100, 0, 5, func(time.Duration) bool { return true }, func(v uint8) { got = append(got, v) })
	if !ok || len(got) != 1 || got[0] != 100 {
		t.Fatalf("snap: ok=%v got=%v", ok, got)
	}
}

func TestLinearSteps(t *testing.T) {
	var got []uint8
	var waited time.Duration
	ok := Linear[uint8](0, 100, 100, 400, 4,
		func(d time.Duration) bool { waited += d; return true },
		func(v uint8) { got = append(got, v) })
	if !ok {
		t.Fatal("ramp cancelled")
	}
	want := []uint8{25, 50, 75, 100}
	if len(got) != len(want) {
		t.Fatalf("levels %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("levels %v, want %v", got, want)
		}
	}
	if waited != 400*time.Millisecond {
		t.Fatalf("waited %v", waited)
	}
}

func TestLinearDown(t *testing.T) {
	var last uint16
	Linear[uint16](100, 0, 100, 30, 3, func(time.Duration) bool { return true }, func(v uint16) { last = v })
	if last != 0 {
		t.Fatalf("last = %d", last)
	}
}

func TestLinearCancel(t *testing.T) {
	calls := 0
	var got []uint8
	ok := Linear[uint8](0, 100, 100, 100, 10,
		func(time.Duration) bool { calls++; return calls < 3 },
		func(v uint8) { got = append(got, v) })
	if ok {
		t.Fatal("want cancelled")
	}
	if len(got) != 2 || got[len(got)-1] == 100 {
		t.Fatalf("levels after cancel %v", got)
	}
}

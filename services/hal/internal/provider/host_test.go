//go:build !rp2040

package provider

import (
	"errors"
	"testing"

	"rgbled-go/drivers/rgbled"
	"rgbled-go/errcode"
	"rgbled-go/syspm"
)

func TestHostClockPoolExhaustion(t *testing.T) {
	h := NewHost(HostBoard{GPIOMax: 9, Clocks: 2})
	a, err := h.AllocateClock()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.AllocateClock(); err != nil {
		t.Fatal(err)
	}
	if _, err := h.AllocateClock(); !errors.Is(err, errcode.NoClock) {
		t.Fatalf("want no_clock, got %v", err)
	}
	a.Free()
	if _, err := h.AllocateClock(); err != nil {
		t.Fatalf("freed divider not reusable: %v", err)
	}
}

func TestHostClockFrequency(t *testing.T) {
	h := NewHost(DefaultHostBoard)
	c, _ := h.AllocateClock()
	if err := c.SetEnabled(true); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("enable before frequency: %v", err)
	}
	if err := c.SetFrequency(0); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("zero frequency: %v", err)
	}
	if err := c.SetFrequency(rgbled.ClockHz); err != nil {
		t.Fatal(err)
	}
	if err := c.SetEnabled(true); err != nil {
		t.Fatal(err)
	}
	st, ok := h.Clock(0)
	if !ok || st.Hz != rgbled.ClockHz || st.Divider != 100 || !st.Enabled {
		t.Fatalf("clock state %+v", st)
	}
}

func TestHostPWMClaims(t *testing.T) {
	h := NewHost(HostBoard{GPIOMin: 0, GPIOMax: 9, PWMPins: []int{1, 2, 3, 4}, Clocks: 1})
	c, _ := h.AllocateClock()

	if _, err := h.InitPWM(42, c, rgbled.ActiveHigh); !errors.Is(err, errcode.UnknownPin) {
		t.Fatalf("out of range: %v", err)
	}
	if _, err := h.InitPWM(7, c, rgbled.ActiveHigh); !errors.Is(err, errcode.Unsupported) {
		t.Fatalf("non-PWM pin: %v", err)
	}
	p, err := h.InitPWM(1, c, rgbled.ActiveLow)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.InitPWM(1, c, rgbled.ActiveLow); !errors.Is(err, errcode.PinInUse) {
		t.Fatalf("double claim: %v", err)
	}
	other := NewHost(DefaultHostBoard)
	oc, _ := other.AllocateClock()
	if _, err := h.InitPWM(2, oc, rgbled.ActiveHigh); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("foreign clock: %v", err)
	}

	p.SetPeriod(255, 300)
	p.Start()
	st, _ := h.Channel(1)
	if !st.Running || st.PeriodUs != 255 || st.PulseUs != 255 || st.Logic != rgbled.ActiveLow {
		t.Fatalf("channel state %+v", st)
	}
	p.Free()
	if _, ok := h.Channel(1); ok {
		t.Fatal("pin still claimed after Free")
	}
}

func TestHostDriverRollbackOnBusyPin(t *testing.T) {
	h := NewHost(DefaultHostBoard)
	pm := syspm.NewManager(nil)

	first := rgbled.New(h, pm)
	if err := first.Init(5, 6, 7, rgbled.ActiveHigh); err != nil {
		t.Fatal(err)
	}
	clocks, pwms := h.InUse()

	second := rgbled.New(h, pm)
	err := second.Init(10, 11, 7, rgbled.ActiveHigh)
	if !errors.Is(err, errcode.PinInUse) {
		t.Fatalf("want pin_in_use, got %v", err)
	}
	if c, p := h.InUse(); c != clocks || p != pwms {
		t.Fatalf("leak after rollback: clocks %d->%d pwms %d->%d", clocks, c, pwms, p)
	}
	if pm.Len() != 1 {
		t.Fatalf("callbacks registered = %d", pm.Len())
	}

	first.On(rgbled.RGB(255, 0, 255), 100)
	st, _ := h.Channel(6)
	if !st.Running || st.PulseUs != 0 {
		t.Fatalf("green channel %+v", st)
	}
	st, _ = h.Channel(7)
	if st.PulseUs != 255 {
		t.Fatalf("blue channel %+v", st)
	}

	first.Deinit()
	if c, p := h.InUse(); c != 0 || p != 0 {
		t.Fatalf("after deinit clocks=%d pwms=%d", c, p)
	}
}

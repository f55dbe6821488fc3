package rgbled

import (
	"errors"
	"strconv"
)

// ---- Test fakes ----

type fakeClock struct {
	h       *fakeHAL
	hz      uint32
	enabled bool
	freed   bool
}

func (c *fakeClock) SetFrequency(hz uint32) error {
	if c.h.failFreq != nil {
		return c.h.failFreq
	}
	c.hz = hz
	c.h.log("clock.freq")
	return nil
}

func (c *fakeClock) SetEnabled(on bool) error {
	if on && c.h.failEnable != nil {
		return c.h.failEnable
	}
	c.enabled = on
	c.h.log("clock.enable=" + strconv.FormatBool(on))
	return nil
}

func (c *fakeClock) Free() { c.freed = true; c.h.log("clock.free") }

type fakePWM struct {
	h       *fakeHAL
	pin     int
	clk     Clock
	logic   ActiveLogic
	running bool
	freed   bool
	period  uint32
	pulse   uint32
	writes  int
}

func (p *fakePWM) Start() { p.running = true }
func (p *fakePWM) Stop()  { p.running = false }
func (p *fakePWM) SetPeriod(periodUs, pulseUs uint32) {
	p.period, p.pulse = periodUs, pulseUs
	p.writes++
}
func (p *fakePWM) Free() { p.freed = true; p.h.log("pwm.free " + strconv.Itoa(p.pin)) }

// fakeHAL hands out fakes and can fail any acquisition step.
type fakeHAL struct {
	clocks []*fakeClock
	pwms   []*fakePWM
	events []string

	failAlloc  error
	failFreq   error
	failEnable error
	failPin    map[int]error
}

func (h *fakeHAL) log(s string) { h.events = append(h.events, s) }

func (h *fakeHAL) AllocateClock() (Clock, error) {
	if h.failAlloc != nil {
		return nil, h.failAlloc
	}
	c := &fakeClock{h: h}
	h.clocks = append(h.clocks, c)
	h.log("clock.alloc")
	return c, nil
}

func (h *fakeHAL) InitPWM(pin int, clk Clock, logic ActiveLogic) (PWM, error) {
	if err := h.failPin[pin]; err != nil {
		return nil, err
	}
	p := &fakePWM{h: h, pin: pin, clk: clk, logic: logic}
	h.pwms = append(h.pwms, p)
	h.log("pwm.init " + strconv.Itoa(pin))
	return p, nil
}

// live counts handles that were acquired and not released.
func (h *fakeHAL) live() (clocks, pwms int) {
	for _, c := range h.clocks {
		if !c.freed {
			clocks++
		}
	}
	for _, p := range h.pwms {
		if !p.freed {
			pwms++
		}
	}
	return
}

var errInjected = errors.New("injected")

// services/hal/internal/provider/rp2.go
//go:build rp2040

package provider

import (
	"machine"
	"sync"

	"rgbled-go/drivers/rgbled"
	"rgbled-go/errcode"
	"rgbled-go/x/mathx"
	"rgbled-go/x/timex"
)

var _ rgbled.HAL = (*rp2HAL)(nil)

const (
	rp2GPIOMin = 0
	rp2GPIOMax = 29
	// Each PWM slice has its own fractional divider; we hand out one logical
	// clock per slice so allocation mirrors the hardware count.
	rp2Slices = 8
)

// Local interface to avoid depending on an unexported concrete type in machine.
type pwmCtrl interface {
	Configure(cfg machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	SetPeriod(period uint64) error
	Top() uint32
	Set(channel uint8, value uint32)
}

// Select controller handle for a given slice number (0..7).
func pwmGroupBySlice(slice uint8) pwmCtrl {
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

type rp2HAL struct {
	mu     sync.Mutex
	clocks int
	pins   map[int]*rp2PWM
	// per-slice configured period (ns); 0 = not yet configured
	slicePeriod [rp2Slices]uint64
}

func newRP2HAL() *rp2HAL {
	return &rp2HAL{pins: make(map[int]*rp2PWM)}
}

func (h *rp2HAL) AllocateClock() (rgbled.Clock, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clocks >= rp2Slices {
		return nil, errcode.NoClock
	}
	h.clocks++
	return &rp2Clock{h: h}, nil
}

// InitPWM ignores logic: an idle pin is parked as an input, which leaves the
// LED dark for either wiring.
func (h *rp2HAL) InitPWM(pin int, clk rgbled.Clock, _ rgbled.ActiveLogic) (rgbled.PWM, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if pin < rp2GPIOMin || pin > rp2GPIOMax {
		return nil, errcode.UnknownPin
	}
	if _, taken := h.pins[pin]; taken {
		return nil, errcode.PinInUse
	}
	c, ok := clk.(*rp2Clock)
	if !ok || c.h != h || !c.enabled {
		return nil, errcode.InvalidParams
	}
	slice, err := machine.PWMPeripheral(machine.Pin(pin))
	if err != nil {
		return nil, errcode.Unsupported
	}
	ctrl := pwmGroupBySlice(slice)
	if h.slicePeriod[slice] == 0 {
		period := timex.MicrosToNanos(rgbled.PWMPeriodUs)
		if err := ctrl.Configure(machine.PWMConfig{Period: period}); err != nil {
			return nil, err
		}
		h.slicePeriod[slice] = period
	}
	ch, err := ctrl.Channel(machine.Pin(pin))
	if err != nil {
		return nil, err
	}
	p := &rp2PWM{h: h, pin: machine.Pin(pin), n: pin, slice: slice, ctrl: ctrl, ch: ch}
	p.park()
	h.pins[pin] = p
	return p, nil
}

type rp2Clock struct {
	h       *rp2HAL
	hz      uint32
	enabled bool
	freed   bool
}

// SetFrequency records the counter rate. Slices derive their period from the
// system clock, so the value only has to be reachable.
func (c *rp2Clock) SetFrequency(hz uint32) error {
	if hz == 0 || hz > machine.CPUFrequency() {
		return errcode.InvalidParams
	}
	c.hz = hz
	return nil
}

func (c *rp2Clock) SetEnabled(on bool) error {
	if on && c.hz == 0 {
		return errcode.InvalidParams
	}
	c.enabled = on
	return nil
}

func (c *rp2Clock) Free() {
	c.h.mu.Lock()
	defer c.h.mu.Unlock()
	if c.freed {
		return
	}
	c.freed = true
	c.h.clocks--
}

type rp2PWM struct {
	h     *rp2HAL
	pin   machine.Pin
	n     int
	slice uint8
	ctrl  pwmCtrl
	ch    uint8

	running  bool
	periodUs uint32
	pulseUs  uint32
}

// park releases the pin to high impedance, which leaves the LED dark for
// either polarity.
func (p *rp2PWM) park() {
	p.pin.Configure(machine.PinConfig{Mode: machine.PinInput})
}

// caller holds lock
func (p *rp2PWM) apply() {
	p.ctrl.Set(p.ch, mathx.Scale(p.pulseUs, p.periodUs, p.ctrl.Top()))
}

func (p *rp2PWM) Start() {
	p.h.mu.Lock()
	defer p.h.mu.Unlock()
	p.running = true
	p.apply()
	p.pin.Configure(machine.PinConfig{Mode: machine.PinPWM})
}

func (p *rp2PWM) Stop() {
	p.h.mu.Lock()
	defer p.h.mu.Unlock()
	p.running = false
	p.park()
}

func (p *rp2PWM) SetPeriod(periodUs, pulseUs uint32) {
	p.h.mu.Lock()
	defer p.h.mu.Unlock()
	if ns := timex.MicrosToNanos(periodUs); ns != p.h.slicePeriod[p.slice] && ns != 0 {
		if p.ctrl.SetPeriod(ns) == nil {
			p.h.slicePeriod[p.slice] = ns
		}
	}
	p.periodUs, p.pulseUs = periodUs, pulseUs
	p.apply()
}

func (p *rp2PWM) Free() {
	p.h.mu.Lock()
	defer p.h.mu.Unlock()
	p.running = false
	p.ctrl.Set(p.ch, 0)
	p.park()
	if p.h.pins[p.n] == p {
		delete(p.h.pins, p.n)
	}
	// Forget the slice period once no claimed pin uses it.
	for _, q := range p.h.pins {
		if q.slice == p.slice {
			return
		}
	}
	p.h.slicePeriod[p.slice] = 0
}

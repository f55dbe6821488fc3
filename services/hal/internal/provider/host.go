// services/hal/internal/provider/host.go
//go:build !rp2040

package provider

import (
	"sync"

	"rgbled-go/drivers/rgbled"
	"rgbled-go/errcode"
	"rgbled-go/x/mathx"
)

// Ensure the host backend satisfies the driver contract at compile time.
var _ rgbled.HAL = (*HostHAL)(nil)

// HostBoard describes the simulated board.
type HostBoard struct {
	Name             string
	GPIOMin, GPIOMax int
	PWMPins          []int  // nil => every pin in range is PWM-capable
	Clocks           int    // peripheral clock dividers available
	SourceHz         uint32 // divider input frequency
}

var DefaultHostBoard = HostBoard{
	Name:     "host",
	GPIOMin:  0,
	GPIOMax:  29,
	Clocks:   4,
	SourceHz: 100_000_000,
}

// PWMState is a snapshot of one simulated channel.
type PWMState struct {
	Pin      int
	Clock    int
	Running  bool
	PeriodUs uint32
	PulseUs  uint32
	Logic    rgbled.ActiveLogic
}

// ClockState is a snapshot of one simulated divider.
type ClockState struct {
	ID      int
	Hz      uint32 // achieved frequency
	Divider uint32
	Enabled bool
}

// -----------------------------------------------------------------------------
// HAL
// -----------------------------------------------------------------------------

// HostHAL simulates clock dividers and PWM channels with the same claim
// rules as the MCU providers.
type HostHAL struct {
	mu     sync.Mutex
	board  HostBoard
	clocks []*HostClock // index = divider id; nil when free
	pwms   map[int]*HostPWM

	// FailInit, when set, is returned by InitPWM for the given pin.
	FailInit map[int]error
}

func NewHost(board HostBoard) *HostHAL {
	if board.Clocks <= 0 {
		board.Clocks = 1
	}
	if board.SourceHz == 0 {
		board.SourceHz = DefaultHostBoard.SourceHz
	}
	return &HostHAL{
		board:  board,
		clocks: make([]*HostClock, board.Clocks),
		pwms:   make(map[int]*HostPWM),
	}
}

func (h *HostHAL) AllocateClock() (rgbled.Clock, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, c := range h.clocks {
		if c == nil {
			c = &HostClock{h: h, id: i}
			h.clocks[i] = c
			return c, nil
		}
	}
	return nil, errcode.NoClock
}

func (h *HostHAL) pwmCapable(n int) bool {
	if n < h.board.GPIOMin || n > h.board.GPIOMax {
		return false
	}
	if h.board.PWMPins == nil {
		return true
	}
	for _, p := range h.board.PWMPins {
		if p == n {
			return true
		}
	}
	return false
}

func (h *HostHAL) InitPWM(pin int, clk rgbled.Clock, logic rgbled.ActiveLogic) (rgbled.PWM, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.FailInit[pin]; err != nil {
		return nil, err
	}
	if pin < h.board.GPIOMin || pin > h.board.GPIOMax {
		return nil, errcode.UnknownPin
	}
	if !h.pwmCapable(pin) {
		return nil, errcode.Unsupported
	}
	if _, taken := h.pwms[pin]; taken {
		return nil, errcode.PinInUse
	}
	c, ok := clk.(*HostClock)
	if !ok || c.h != h || h.clocks[c.id] != c {
		return nil, errcode.InvalidParams
	}
	p := &HostPWM{h: h, pin: pin, clk: c, logic: logic}
	h.pwms[pin] = p
	return p, nil
}

// Channel returns the state of the channel claimed on pin.
func (h *HostHAL) Channel(pin int) (PWMState, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.pwms[pin]
	if !ok {
		return PWMState{}, false
	}
	return PWMState{Pin: p.pin, Clock: p.clk.id, Running: p.running, PeriodUs: p.periodUs, PulseUs: p.pulseUs, Logic: p.logic}, true
}

// Clock returns the state of divider id if it is allocated.
func (h *HostHAL) Clock(id int) (ClockState, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if id < 0 || id >= len(h.clocks) || h.clocks[id] == nil {
		return ClockState{}, false
	}
	c := h.clocks[id]
	return ClockState{ID: c.id, Hz: c.hz, Divider: c.div, Enabled: c.enabled}, true
}

// InUse reports allocated dividers and claimed PWM pins.
func (h *HostHAL) InUse() (clocks, pwms int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clocks {
		if c != nil {
			clocks++
		}
	}
	return clocks, len(h.pwms)
}

// -----------------------------------------------------------------------------
// Clock
// -----------------------------------------------------------------------------

type HostClock struct {
	h       *HostHAL
	id      int
	hz      uint32
	div     uint32
	enabled bool
}

func (c *HostClock) SetFrequency(hz uint32) error {
	c.h.mu.Lock()
	defer c.h.mu.Unlock()
	src := c.h.board.SourceHz
	if hz == 0 || hz > src {
		return errcode.InvalidParams
	}
	c.div = mathx.RoundDiv(src, hz)
	c.hz = src / c.div
	return nil
}

func (c *HostClock) SetEnabled(on bool) error {
	c.h.mu.Lock()
	defer c.h.mu.Unlock()
	if on && c.div == 0 {
		return errcode.InvalidParams
	}
	c.enabled = on
	return nil
}

func (c *HostClock) Free() {
	c.h.mu.Lock()
	defer c.h.mu.Unlock()
	if c.id < len(c.h.clocks) && c.h.clocks[c.id] == c {
		c.h.clocks[c.id] = nil
	}
	c.enabled = false
}

// -----------------------------------------------------------------------------
// PWM
// -----------------------------------------------------------------------------

type HostPWM struct {
	h        *HostHAL
	pin      int
	clk      *HostClock
	logic    rgbled.ActiveLogic
	running  bool
	periodUs uint32
	pulseUs  uint32
}

func (p *HostPWM) Start() {
	p.h.mu.Lock()
	p.running = true
	p.h.mu.Unlock()
}

func (p *HostPWM) Stop() {
	p.h.mu.Lock()
	p.running = false
	p.h.mu.Unlock()
}

func (p *HostPWM) SetPeriod(periodUs, pulseUs uint32) {
	p.h.mu.Lock()
	p.periodUs = periodUs
	p.pulseUs = mathx.Min(pulseUs, periodUs)
	p.h.mu.Unlock()
}

func (p *HostPWM) Free() {
	p.h.mu.Lock()
	defer p.h.mu.Unlock()
	p.running = false
	if p.h.pwms[p.pin] == p {
		delete(p.h.pwms, p.pin)
	}
}

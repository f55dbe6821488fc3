package provider

import (
	"sync"

	"rgbled-go/drivers/rgbled"
	"rgbled-go/errcode"
	"rgbled-go/x/mathx"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/pca9685"
)

var _ rgbled.HAL = (*PCA9685)(nil)

// PCA9685Channels is the number of PWM outputs on the chip.
const PCA9685Channels = 16

// PCA9685 exposes a PCA9685 I2C PWM expander as a HAL. The chip has a single
// oscillator and prescaler, so every allocated clock shares it; frequency
// requests must agree once more than one user holds the clock (same policy
// as RP2040 slice sharing). Pins are channel numbers 0..15.
//
// The chip runs its own ~1 kHz PWM frame; pulse widths are carried over as a
// duty ratio of the requested period.
type PCA9685 struct {
	mu  sync.Mutex
	dev pca9685.Dev

	users      int
	hz         uint32
	configured bool
	chans      [PCA9685Channels]*pcaPWM
}

func NewPCA9685(bus drivers.I2C, addr uint8) *PCA9685 {
	return &PCA9685{dev: pca9685.New(bus, addr)}
}

func (c *PCA9685) AllocateClock() (rgbled.Clock, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users++
	return &pcaClock{chip: c}, nil
}

func (c *PCA9685) InitPWM(pin int, clk rgbled.Clock, logic rgbled.ActiveLogic) (rgbled.PWM, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pin < 0 || pin >= PCA9685Channels {
		return nil, errcode.UnknownPin
	}
	if c.chans[pin] != nil {
		return nil, errcode.PinInUse
	}
	pc, ok := clk.(*pcaClock)
	if !ok || pc.chip != c || pc.freed {
		return nil, errcode.InvalidParams
	}
	if !c.configured {
		return nil, errcode.HALNotReady
	}
	p := &pcaPWM{chip: c, ch: uint8(pin)}
	if logic == rgbled.ActiveLow {
		p.idle = c.dev.Top()
	}
	c.chans[pin] = p
	c.dev.Set(p.ch, p.idle)
	return p, nil
}

// duty programs ch; caller holds lock.
func (c *PCA9685) duty(ch uint8, pulseUs, periodUs uint32) {
	c.dev.Set(ch, mathx.Scale(pulseUs, periodUs, c.dev.Top()))
}

type pcaClock struct {
	chip  *PCA9685
	freed bool
}

// SetFrequency only records hz so that users sharing the chip agree on it.
// The value is never programmed; the chip keeps its default LED frame.
func (k *pcaClock) SetFrequency(hz uint32) error {
	c := k.chip
	c.mu.Lock()
	defer c.mu.Unlock()
	if hz == 0 {
		return errcode.InvalidParams
	}
	if c.hz != 0 && c.hz != hz && c.users > 1 {
		return errcode.Conflict
	}
	c.hz = hz
	return nil
}

// SetEnabled(true) configures the chip on first use (autoincrement, all
// outputs low, totem-pole drive, default LED frame). Disabling puts the chip
// to sleep once no other user holds the clock.
func (k *pcaClock) SetEnabled(on bool) error {
	c := k.chip
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		if c.configured {
			return nil
		}
		if err := c.dev.Configure(pca9685.PWMConfig{}); err != nil {
			return err
		}
		c.configured = true
		return nil
	}
	if c.users > 1 || !c.configured {
		return nil
	}
	c.configured = false
	return c.dev.Sleep(true)
}

func (k *pcaClock) Free() {
	c := k.chip
	c.mu.Lock()
	defer c.mu.Unlock()
	if k.freed {
		return
	}
	k.freed = true
	c.users--
	if c.users == 0 {
		c.hz = 0
	}
}

type pcaPWM struct {
	chip     *PCA9685
	ch       uint8
	idle     uint32 // dark level: 0 for active-high, Top for active-low
	running  bool
	periodUs uint32
	pulseUs  uint32
}

func (p *pcaPWM) Start() {
	p.chip.mu.Lock()
	defer p.chip.mu.Unlock()
	p.running = true
	p.chip.duty(p.ch, p.pulseUs, p.periodUs)
}

// Stop parks the output at its dark level.
func (p *pcaPWM) Stop() {
	p.chip.mu.Lock()
	defer p.chip.mu.Unlock()
	p.running = false
	p.chip.dev.Set(p.ch, p.idle)
}

func (p *pcaPWM) SetPeriod(periodUs, pulseUs uint32) {
	p.chip.mu.Lock()
	defer p.chip.mu.Unlock()
	p.periodUs, p.pulseUs = periodUs, pulseUs
	if p.running {
		p.chip.duty(p.ch, pulseUs, periodUs)
	}
}

func (p *pcaPWM) Free() {
	p.chip.mu.Lock()
	defer p.chip.mu.Unlock()
	p.running = false
	if p.chip.configured {
		p.chip.dev.Set(p.ch, p.idle)
	}
	if p.chip.chans[p.ch] == p {
		p.chip.chans[p.ch] = nil
	}
}

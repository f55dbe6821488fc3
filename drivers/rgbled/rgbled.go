// Package rgbled drives a three-channel RGB LED from three PWM outputs that
// share one peripheral clock.
//
//	led := rgbled.New(hal, pm)
//	if err := led.Init(redPin, greenPin, bluePin, rgbled.ActiveLow); err != nil { ... }
//	led.On(rgbled.ColorCyan, 50)
//	led.Toggle()
//
// Brightness scales all three channels uniformly:
//
//	pulse = brightness * channel / MaxBrightness
//
// and is inverted (PWMPeriodUs - pulse) for active-low wiring. While the LED
// is initialised and on, the device refuses deep-sleep entry through the
// callback it registers with the PowerManager.
//
// A Device is not safe for concurrent use; callers serialise access, and the
// power manager must not run a transition concurrently with a mutator.
package rgbled

import (
	"rgbled-go/errcode"
	"rgbled-go/syspm"
	"rgbled-go/x/mathx"
)

const (
	// PWMPeriodUs is the PWM period shared by all three channels.
	PWMPeriodUs uint32 = 255
	// ClockHz is the counter clock all three channels run from.
	ClockHz uint32 = 1_000_000
	// MaxBrightness is the full-scale brightness; writes above it clamp.
	MaxBrightness uint8 = 100
)

// ActiveLogic is the output level that lights the LED.
type ActiveLogic uint8

const (
	ActiveLow ActiveLogic = iota
	ActiveHigh
)

func (l ActiveLogic) String() string {
	if l == ActiveHigh {
		return "active_high"
	}
	return "active_low"
}

// Device is one RGB LED.
type Device struct {
	hal HAL
	pm  PowerManager

	clk              Clock
	red, green, blue PWM

	color      Color
	brightness uint8
	on         bool
	logic      ActiveLogic

	pulse [3]uint32 // last programmed r, g, b pulse widths

	lp syspm.Callback
}

// New returns an uninitialised, off device. pm may be nil on platforms
// without power management.
func New(hal HAL, pm PowerManager) *Device {
	d := &Device{hal: hal, pm: pm, color: ColorOff}
	d.lp = syspm.Callback{
		Fn:          d.lowPowerReady,
		States:      syspm.CPUDeepSleep,
		IgnoreModes: syspm.CheckFail | syspm.BeforeTransition | syspm.AfterTransition,
	}
	return d
}

// Init claims the clock and the three PWM channels. If any step fails,
// everything already acquired is released and the HAL error is returned
// unchanged. An initialised device returns errcode.Busy until Deinit.
func (d *Device) Init(pinRed, pinGreen, pinBlue int, logic ActiveLogic) (err error) {
	if d.clk != nil {
		return errcode.Busy
	}
	d.logic = logic

	var (
		clk              Clock
		red, green, blue PWM
	)
	defer func() {
		if err == nil {
			return
		}
		for _, p := range [...]PWM{red, green, blue} {
			if p != nil {
				p.Free()
			}
		}
		if clk != nil {
			_ = clk.SetEnabled(false)
			clk.Free()
		}
	}()

	if clk, err = d.hal.AllocateClock(); err != nil {
		clk = nil
		return err
	}
	if err = clk.SetFrequency(ClockHz); err != nil {
		return err
	}
	if err = clk.SetEnabled(true); err != nil {
		return err
	}
	if red, err = d.hal.InitPWM(pinRed, clk, logic); err != nil {
		red = nil
		return err
	}
	if green, err = d.hal.InitPWM(pinGreen, clk, logic); err != nil {
		green = nil
		return err
	}
	if blue, err = d.hal.InitPWM(pinBlue, clk, logic); err != nil {
		blue = nil
		return err
	}

	d.clk, d.red, d.green, d.blue = clk, red, green, blue
	if d.pm != nil {
		d.pm.Register(&d.lp)
	}
	return nil
}

// Deinit releases the channels and the clock and withdraws the power-mode
// callback. It must follow a successful Init.
func (d *Device) Deinit() {
	d.each(PWM.Free)
	if d.clk != nil {
		_ = d.clk.SetEnabled(false)
		d.clk.Free()
	}
	if d.pm != nil {
		d.pm.Unregister(&d.lp)
	}
	d.clk, d.red, d.green, d.blue = nil, nil, nil, nil
}

// On lights the LED with color at brightness.
func (d *Device) On(color Color, brightness uint8) {
	d.on = true
	d.color = color
	d.each(PWM.Start)
	d.SetBrightness(brightness)
}

// Off stops the channels. Colour and brightness are kept for Toggle.
func (d *Device) Off() {
	d.on = false
	d.each(PWM.Stop)
}

// Toggle switches between off and the last colour and brightness.
func (d *Device) Toggle() {
	if d.on {
		d.Off()
		return
	}
	d.On(d.color, d.brightness)
}

// SetColor stores color and reprograms all three duty cycles. It also runs
// while the LED is off so that the next On starts from correct values.
func (d *Device) SetColor(color Color) {
	d.color = color

	for i, pos := range [...]uint{RedPos, GreenPos, BluePos} {
		w := uint32(d.brightness) * uint32(color.Channel(pos)) / uint32(MaxBrightness)
		if d.logic == ActiveLow {
			w = PWMPeriodUs - w
		}
		d.pulse[i] = w
	}

	if d.red != nil {
		d.red.SetPeriod(PWMPeriodUs, d.pulse[0])
	}
	if d.green != nil {
		d.green.SetPeriod(PWMPeriodUs, d.pulse[1])
	}
	if d.blue != nil {
		d.blue.SetPeriod(PWMPeriodUs, d.pulse[2])
	}
}

// SetBrightness clamps brightness to MaxBrightness, stores it and
// recomputes the duty cycles for the stored colour.
func (d *Device) SetBrightness(brightness uint8) {
	d.brightness = mathx.Clamp(brightness, 0, MaxBrightness)
	d.SetColor(d.color)
}

// Color reports the current colour, or ColorOff while off.
func (d *Device) Color() Color {
	if !d.on {
		return ColorOff
	}
	return d.color
}

// Brightness reports the current brightness, or 0 while off.
func (d *Device) Brightness() uint8 {
	if !d.on {
		return 0
	}
	return d.brightness
}

func (d *Device) IsOn() bool { return d.on }

func (d *Device) ActiveLogic() ActiveLogic { return d.logic }

// PulseWidths returns the last programmed red, green and blue pulse widths
// in microseconds (after any active-low inversion).
func (d *Device) PulseWidths() (r, g, b uint32) {
	return d.pulse[0], d.pulse[1], d.pulse[2]
}

// each applies fn to every initialised channel in red, green, blue order.
func (d *Device) each(fn func(PWM)) {
	for _, p := range [...]PWM{d.red, d.green, d.blue} {
		if p != nil {
			fn(p)
		}
	}
}

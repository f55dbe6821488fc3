package rgb_led

import (
	"context"
	"sync"
	"time"

	"rgbled-go/drivers/rgbled"
	"rgbled-go/errcode"
	"rgbled-go/services/hal/internal/core"
	"rgbled-go/types"
	"rgbled-go/x/ramp"
	"rgbled-go/x/timex"
)

// Device adapts an rgbled.Device to the HAL capability model. Controls run
// on the HAL goroutine; a fade runs on its own goroutine and only ever
// changes brightness, always under mu.
type Device struct {
	id     string
	params types.RGBLEDParams
	pub    core.EventEmitter
	addr   core.CapAddr

	mu  sync.Mutex
	led *rgbled.Device

	fadeStop chan struct{}
	fadeDone chan struct{}
}

func (d *Device) ID() string { return d.id }

func (d *Device) Capabilities() []core.CapabilitySpec {
	return []core.CapabilitySpec{{
		Domain: d.addr.Domain,
		Kind:   types.KindRGBLED,
		Name:   d.addr.Name,
		Info: types.Info{
			SchemaVersion: 1,
			Driver:        "rgb_led",
			Detail: types.RGBLEDInfo{
				Red:       d.params.Red,
				Green:     d.params.Green,
				Blue:      d.params.Blue,
				ActiveLow: d.params.ActiveLow,
				Backend:   d.params.Backend,
				Bus:       d.params.Bus,
				Addr:      d.params.Addr,
				PeriodUs:  rgbled.PWMPeriodUs,
				MaxBright: rgbled.MaxBrightness,
			},
		},
	}}
}

func (d *Device) logic() rgbled.ActiveLogic {
	if d.params.ActiveLow {
		return rgbled.ActiveLow
	}
	return rgbled.ActiveHigh
}

func (d *Device) Init(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.led.Init(d.params.Red, d.params.Green, d.params.Blue, d.logic()); err != nil {
		return errcode.Wrap("rgb_led_init", err)
	}
	if in := d.params.Initial; in != nil {
		d.led.On(rgbled.Color(in.Color), in.Brightness)
	}
	d.emitLocked()
	return nil
}

// Close cancels any fade, turns the LED off and releases the hardware.
func (d *Device) Close() error {
	d.stopFade()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.led.Off()
	d.led.Deinit()
	return nil
}

func (d *Device) Control(_ core.CapAddr, method string, payload any) (core.ControlResult, error) {
	if method != "read" {
		d.stopFade()
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	switch method {
	case "on":
		if payload == nil {
			if !d.led.IsOn() {
				d.led.Toggle()
			}
			break
		}
		p, ok := payload.(types.RGBLEDOn)
		if !ok {
			return core.ControlResult{Error: errcode.InvalidPayload}, nil
		}
		if !validColor(p.Color) {
			return core.ControlResult{Error: errcode.InvalidParams}, nil
		}
		d.led.On(rgbled.Color(p.Color), p.Brightness)

	case "off":
		d.led.Off()

	case "toggle":
		d.led.Toggle()

	case "set_color":
		p, ok := payload.(types.RGBLEDSetColor)
		if !ok {
			return core.ControlResult{Error: errcode.InvalidPayload}, nil
		}
		if !validColor(p.Color) {
			return core.ControlResult{Error: errcode.InvalidParams}, nil
		}
		d.led.SetColor(rgbled.Color(p.Color))

	case "set_brightness":
		p, ok := payload.(types.RGBLEDSetBrightness)
		if !ok {
			return core.ControlResult{Error: errcode.InvalidPayload}, nil
		}
		d.led.SetBrightness(p.Brightness)

	case "fade":
		p, ok := payload.(types.RGBLEDFade)
		if !ok {
			return core.ControlResult{Error: errcode.InvalidPayload}, nil
		}
		if !d.led.IsOn() {
			d.led.Toggle()
		}
		d.startFadeLocked(p)

	case "read":

	default:
		return core.ControlResult{Error: errcode.Unsupported}, nil
	}

	d.emitLocked()
	return core.ControlResult{OK: true}, nil
}

func validColor(c uint32) bool { return c <= 0xFFFFFF }

// caller holds mu
func (d *Device) value() types.RGBLEDValue {
	return types.RGBLEDValue{
		On:         d.led.IsOn(),
		Color:      uint32(d.led.Color()),
		Brightness: d.led.Brightness(),
	}
}

// caller holds mu
func (d *Device) emitLocked() {
	if d.pub == nil {
		return
	}
	if !d.pub.Emit(core.Event{Addr: d.addr, Payload: d.value(), TS: timex.NowMs()}) {
		println("[rgb_led] value dropped:", d.id)
	}
}

// startFadeLocked launches the ramp goroutine; caller holds mu and has
// already stopped any previous fade.
func (d *Device) startFadeLocked(f types.RGBLEDFade) {
	stop := make(chan struct{})
	done := make(chan struct{})
	d.fadeStop, d.fadeDone = stop, done
	from := d.led.Brightness()

	tick := func(dur time.Duration) bool {
		t := time.NewTimer(dur)
		select {
		case <-t.C:
			return true
		case <-stop:
			t.Stop()
			return false
		}
	}
	set := func(level uint8) {
		d.mu.Lock()
		d.led.SetBrightness(level)
		d.mu.Unlock()
	}

	go func() {
		defer close(done)
		if ramp.Linear(from, f.Brightness, rgbled.MaxBrightness, f.DurationMs, f.Steps, tick, set) {
			d.mu.Lock()
			d.emitLocked()
			d.mu.Unlock()
		}
	}()
}

// stopFade cancels a running fade and waits for it to exit. It must be
// called without mu held.
func (d *Device) stopFade() {
	if d.fadeStop == nil {
		return
	}
	close(d.fadeStop)
	<-d.fadeDone
	d.fadeStop, d.fadeDone = nil, nil
}

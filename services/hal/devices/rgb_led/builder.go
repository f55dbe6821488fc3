// services/hal/devices/rgb_led/builder.go
package rgb_led

import (
	"context"

	"rgbled-go/drivers/rgbled"
	"rgbled-go/errcode"
	"rgbled-go/services/hal/internal/core"
	"rgbled-go/types"
	"rgbled-go/x/strx"
)

// DefaultPCA9685Addr is used when Params.Addr is zero.
const DefaultPCA9685Addr uint8 = 0x40

func init() { core.RegisterBuilder("rgb_led", builder{}) }

type builder struct{}

func (builder) Build(ctx context.Context, in core.BuilderInput) (core.Device, error) {
	p, ok := in.Params.(types.RGBLEDParams)
	if !ok {
		return nil, errcode.InvalidParams
	}
	if p.Red < 0 || p.Green < 0 || p.Blue < 0 {
		return nil, errcode.InvalidParams
	}
	if p.Red == p.Green || p.Red == p.Blue || p.Green == p.Blue {
		return nil, errcode.InvalidParams
	}

	backend := strx.Coalesce(p.Backend, types.RGBBackendPWM)
	var hal rgbled.HAL
	switch backend {
	case types.RGBBackendPWM:
		hal = in.Res.PWM
	case types.RGBBackendPCA9685:
		if in.Res.Expander == nil || p.Bus == "" {
			return nil, errcode.UnknownBus
		}
		if p.Addr == 0 {
			p.Addr = DefaultPCA9685Addr
		}
		h, err := in.Res.Expander(p.Bus, p.Addr)
		if err != nil {
			return nil, errcode.Wrap("rgb_led_expander", err)
		}
		hal = h
	default:
		return nil, errcode.Unsupported
	}
	if hal == nil {
		return nil, errcode.Unsupported
	}
	p.Backend = backend

	// A nil *syspm.Manager must not become a non-nil interface.
	var pm rgbled.PowerManager
	if in.Res.PM != nil {
		pm = in.Res.PM
	}

	d := &Device{
		id:     in.ID,
		params: p,
		led:    rgbled.New(hal, pm),
		pub:    in.Res.Pub,
		addr: core.CapAddr{
			Domain: strx.Coalesce(p.Domain, "io"),
			Kind:   string(types.KindRGBLED),
			Name:   strx.Coalesce(p.Name, in.ID),
		},
	}
	return d, nil
}

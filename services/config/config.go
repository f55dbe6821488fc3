package config

import (
	"context"

	"rgbled-go/bus"
	"rgbled-go/errcode"
	"rgbled-go/services/config/setups"
)

// -----------------------------------------------------------------------------
// String constants (live in flash, not RAM)
// -----------------------------------------------------------------------------

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxDeviceKey = "device" // context key used for device ID
)

// ProfileLookup resolves the profile for a device ID. Tests override it.
var ProfileLookup = func(device string) (setups.Profile, bool) {
	if device != setups.BoardName {
		return setups.Profile{}, false
	}
	return setups.Selected, true
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// publishConfig publishes each section of the device profile as a retained
// message under config/<section>.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		device = setups.BoardName
	}
	p, ok := ProfileLookup(device)
	if !ok {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "no profile for device " + device}
	}

	conn.Publish(conn.NewMessage(bus.T(configPrefix, "hal"), p.HAL, true))
	if p.Heartbeat.IntervalMs > 0 {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, "heartbeat"), p.Heartbeat, true))
	}
	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			println("[config]", err.Error())
			return
		}
		println("[config] published profile")
	}()
}

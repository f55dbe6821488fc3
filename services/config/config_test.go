// config/config_test.go
package config

import (
	"context"
	"testing"
	"time"

	"rgbled-go/bus"
	"rgbled-go/services/config/setups"
	"rgbled-go/types"
)

func TestConfig_PublishProfile_RetainedPerSection(t *testing.T) {
	oldLookup := ProfileLookup
	ProfileLookup = func(device string) (setups.Profile, bool) {
		if device != "bench" {
			return setups.Profile{}, false
		}
		return setups.Profile{
			HAL: types.HALConfig{Devices: []types.HALDevice{
				{ID: "led", Type: "rgb_led", Params: types.RGBLEDParams{Red: 1, Green: 2, Blue: 3}},
			}},
			Heartbeat: types.HeartbeatConfig{IntervalMs: 250, Domain: "io", Name: "led"},
		}, true
	}
	t.Cleanup(func() { ProfileLookup = oldLookup })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	ctx := context.WithValue(context.Background(), CtxDeviceKey, "bench")
	if err := NewConfigService().publishConfig(ctx, conn); err != nil {
		t.Fatal(err)
	}

	// Subscribing afterwards still sees both sections.
	sub := conn.Subscribe(bus.T(configPrefix, "#"))
	got := map[string]any{}
	deadline := time.Now().Add(300 * time.Millisecond)
	for len(got) < 2 && time.Now().Before(deadline) {
		select {
		case m := <-sub.Channel():
			key, _ := m.Topic.At(1).(string)
			got[key] = m.Payload
		case <-time.After(10 * time.Millisecond):
		}
	}
	cfg, ok := got["hal"].(types.HALConfig)
	if !ok || len(cfg.Devices) != 1 || cfg.Devices[0].Type != "rgb_led" {
		t.Fatalf("config/hal = %#v", got["hal"])
	}
	hb, ok := got["heartbeat"].(types.HeartbeatConfig)
	if !ok || hb.IntervalMs != 250 || hb.Name != "led" {
		t.Fatalf("config/heartbeat = %#v", got["heartbeat"])
	}
}

func TestConfig_UnknownDevice(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-config")
	ctx := context.WithValue(context.Background(), CtxDeviceKey, "no-such-board")
	if err := NewConfigService().publishConfig(ctx, conn); err == nil {
		t.Fatal("expected error for unknown device")
	}
}

func TestConfig_SelectedProfileIsDefault(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-config")
	if err := NewConfigService().publishConfig(context.Background(), conn); err != nil {
		t.Fatal(err)
	}
	sub := conn.Subscribe(bus.T(configPrefix, "hal"))
	select {
	case m := <-sub.Channel():
		if len(m.Payload.(types.HALConfig).Devices) == 0 {
			t.Fatal("selected setup has no devices")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("config/hal not retained")
	}
}

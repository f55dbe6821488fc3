//go:build !rp2040

package setups

import "rgbled-go/types"

// BoardName keys the profile of this build.
const BoardName = "host"

var SelectedPlan = ResourcePlan{
	I2C: []I2CPlan{
		{ID: "i2c0", Hz: 400_000},
	},
	Expanders: []ExpanderPlan{
		{Bus: "i2c0", Addr: 0x40},
	},
}

var Selected = Profile{
	HAL: types.HALConfig{
		Devices: []types.HALDevice{
			// Common-anode LED on simulated PWM pins (hal/cap/io/rgb_led/status/…)
			{ID: "status", Type: "rgb_led", Params: types.RGBLEDParams{
				Red: 16, Green: 17, Blue: 18, ActiveLow: true,
				Domain: "io", Name: "status",
			}},
			// Common-cathode LED on PCA9685 channels 0..2 (hal/cap/io/rgb_led/panel/…)
			{ID: "panel", Type: "rgb_led", Params: types.RGBLEDParams{
				Red: 0, Green: 1, Blue: 2,
				Backend: types.RGBBackendPCA9685, Bus: "i2c0", Addr: 0x40,
				Domain: "io", Name: "panel",
				Initial: &types.RGBLEDOn{Color: 0x00FFFF, Brightness: 20},
			}},
		},
	},
	Heartbeat: types.HeartbeatConfig{IntervalMs: 1000, Domain: "io", Name: "status"},
}

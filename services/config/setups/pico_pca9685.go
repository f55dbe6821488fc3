//go:build rp2040 && pico_pca9685

package setups

import "rgbled-go/types"

// BoardName keys the profile of this build.
const BoardName = "pico_pca9685"

var SelectedPlan = ResourcePlan{
	I2C: []I2CPlan{
		{ID: "i2c0", SDA: 4, SCL: 5, Hz: 400_000},
	},
	Expanders: []ExpanderPlan{
		{Bus: "i2c0", Addr: 0x40},
	},
}

var Selected = Profile{
	HAL: types.HALConfig{
		Devices: []types.HALDevice{
			{ID: "status", Type: "rgb_led", Params: types.RGBLEDParams{
				Red: 6, Green: 7, Blue: 8, ActiveLow: true,
				Domain: "io", Name: "status",
			}},
			// Two LEDs share the chip; channels 3..5 drive the second.
			{ID: "strip0", Type: "rgb_led", Params: types.RGBLEDParams{
				Red: 0, Green: 1, Blue: 2,
				Backend: types.RGBBackendPCA9685, Bus: "i2c0",
				Domain: "io", Name: "strip0",
			}},
			{ID: "strip1", Type: "rgb_led", Params: types.RGBLEDParams{
				Red: 3, Green: 4, Blue: 5,
				Backend: types.RGBBackendPCA9685, Bus: "i2c0",
				Domain: "io", Name: "strip1",
			}},
		},
	},
	Heartbeat: types.HeartbeatConfig{IntervalMs: 500, Domain: "io", Name: "status"},
}

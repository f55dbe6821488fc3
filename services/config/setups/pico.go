//go:build rp2040 && !pico_pca9685

package setups

import "rgbled-go/types"

// BoardName keys the profile of this build.
const BoardName = "pico"

// No buses; the LED hangs straight off PWM pins.
var SelectedPlan = ResourcePlan{}

// Pimoroni Pico Display/Explorer style common-anode LED on GPIO 6, 7, 8.
var Selected = Profile{
	HAL: types.HALConfig{
		Devices: []types.HALDevice{
			{ID: "status", Type: "rgb_led", Params: types.RGBLEDParams{
				Red: 6, Green: 7, Blue: 8, ActiveLow: true,
				Domain: "io", Name: "status",
			}},
		},
	},
	Heartbeat: types.HeartbeatConfig{IntervalMs: 1000, Domain: "io", Name: "status"},
}

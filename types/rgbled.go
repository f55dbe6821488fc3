package types

// ------------------------
// RGB LED (rgb_led)
// ------------------------

// Backends for RGBLEDParams.Backend.
const (
	RGBBackendPWM     = "pwm"     // MCU PWM pins
	RGBBackendPCA9685 = "pca9685" // PCA9685 channels on an I2C bus
)

type RGBLEDParams struct {
	Red   int `json:"red"`
	Green int `json:"green"`
	Blue  int `json:"blue"`

	ActiveLow bool `json:"active_low,omitempty"`

	Backend string `json:"backend,omitempty"` // "" => "pwm"
	Bus     string `json:"bus,omitempty"`     // pca9685 only, e.g. "i2c0"
	Addr    uint8  `json:"addr,omitempty"`    // pca9685 only, 0 => 0x40

	Domain string `json:"domain,omitempty"` // "" => "io"
	Name   string `json:"name,omitempty"`   // "" => device id

	// Optional state applied once Init succeeds.
	Initial *RGBLEDOn `json:"initial,omitempty"`
}

// RGBLEDInfo is published as Info.Detail.
type RGBLEDInfo struct {
	Red       int    `json:"red"`
	Green     int    `json:"green"`
	Blue      int    `json:"blue"`
	ActiveLow bool   `json:"active_low"`
	Backend   string `json:"backend"`
	Bus       string `json:"bus,omitempty"`
	Addr      uint8  `json:"addr,omitempty"`
	PeriodUs  uint32 `json:"period_us"`
	MaxBright uint8  `json:"max_brightness"`
}

// RGBLEDValue is published under hal/cap/.../value (retained).
type RGBLEDValue struct {
	On         bool   `json:"on"`
	Color      uint32 `json:"color"` // 0x00RRGGBB
	Brightness uint8  `json:"brightness"`
}

// Control payloads

type RGBLEDOn struct {
	Color      uint32 `json:"color"`
	Brightness uint8  `json:"brightness"`
}

type RGBLEDSetColor struct {
	Color uint32 `json:"color"`
}

type RGBLEDSetBrightness struct {
	Brightness uint8 `json:"brightness"`
}

// RGBLEDFade moves brightness linearly to Brightness over DurationMs in
// Steps increments. Steps or DurationMs of 0 jumps straight there. A fade on
// an unlit LED lights it first with the stored colour.
type RGBLEDFade struct {
	Brightness uint8  `json:"brightness"`
	DurationMs uint32 `json:"duration_ms"`
	Steps      uint16 `json:"steps"`
}

package setups

import "rgbled-go/types"

// ResourcePlan specifies wiring and operating parameters chosen by a setup.
// Providers consume this plan to instantiate resource owners.
type ResourcePlan struct {
	I2C       []I2CPlan
	Expanders []ExpanderPlan
}

type I2CPlan struct {
	ID  string // e.g. "i2c0"
	SDA int    // GPIO number
	SCL int    // GPIO number
	Hz  uint32 // bus frequency
}

// ExpanderPlan declares a PWM expander fitted to a bus. On host builds it is
// where the simulated chip answers.
type ExpanderPlan struct {
	Bus  string
	Addr uint8
}

// Profile is everything the config service publishes for one board.
type Profile struct {
	HAL       types.HALConfig
	Heartbeat types.HeartbeatConfig
}

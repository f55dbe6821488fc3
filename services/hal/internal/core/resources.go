package core

import (
	"rgbled-go/drivers/rgbled"
	"rgbled-go/syspm"
)

// ---- Device → HAL telemetry (single shape) ----
// An Event is a value update for a capability that HAL publishes to
// .../value (retained) with status up. Err, when non-empty, causes HAL to
// publish only .../status=degraded (retained).

type Event struct {
	Addr    CapAddr
	Payload any // typed value payload (e.g. types.RGBLEDValue)
	TS      int64
	Err     string
}

// EventEmitter must not block; false indicates a drop under pressure.
type EventEmitter interface {
	Emit(ev Event) bool
}

// ExpanderFunc returns the HAL for a PWM expander at addr on bus. Repeated
// calls for the same bus and address return the same instance.
type ExpanderFunc func(bus string, addr uint8) (rgbled.HAL, error)

// ---- HAL-injected resources ----

type Resources struct {
	PWM      rgbled.HAL     // on-chip PWM pins
	Expander ExpanderFunc   // optional; nil => no I2C expanders
	PM       *syspm.Manager // optional; nil => no low-power coordination
	Pub      EventEmitter   // provided by HAL
}

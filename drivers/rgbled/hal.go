package rgbled

import "rgbled-go/syspm"

// HAL is the platform surface the driver consumes. Errors returned from
// AllocateClock and InitPWM are passed back to Init callers unchanged.
type HAL interface {
	// AllocateClock reserves a peripheral clock divider.
	AllocateClock() (Clock, error)
	// InitPWM binds a PWM channel on pin, clocked from clk. logic is the
	// level that lights the LED; a channel that is stopped, freed or not yet
	// started must leave it dark.
	InitPWM(pin int, clk Clock, logic ActiveLogic) (PWM, error)
}

type Clock interface {
	SetFrequency(hz uint32) error
	SetEnabled(enabled bool) error
	Free()
}

// PWM is one output channel. Runtime calls cannot fail once the channel is
// initialised.
type PWM interface {
	Start()
	Stop()
	// SetPeriod programs the period and the active pulse width, both in
	// microseconds.
	SetPeriod(periodUs, pulseUs uint32)
	Free()
}

// PowerManager accepts power-mode transition callbacks. *syspm.Manager
// satisfies it.
type PowerManager interface {
	Register(cb *syspm.Callback)
	Unregister(cb *syspm.Callback)
}

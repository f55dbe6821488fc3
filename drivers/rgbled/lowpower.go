package rgbled

import "rgbled-go/syspm"

// lowPowerReady is registered for deep sleep. PWM output is not retained
// across deep sleep, so the transition is allowed only while the LED is off.
// Every mode other than CheckReady is masked out at registration and
// reports false.
func (d *Device) lowPowerReady(_ syspm.State, mode syspm.Mode, _ any) bool {
	return mode == syspm.CheckReady && !d.on
}

// LowPowerReady exposes the readiness decision for diagnostics.
func (d *Device) LowPowerReady(state syspm.State, mode syspm.Mode) bool {
	return d.lowPowerReady(state, mode, nil)
}

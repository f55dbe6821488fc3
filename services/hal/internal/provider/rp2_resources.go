//go:build rp2040

package provider

import (
	"machine"

	"rgbled-go/errcode"
	"rgbled-go/services/config/setups"
	"rgbled-go/services/hal/internal/core"
	"rgbled-go/syspm"

	"tinygo.org/x/drivers"
)

func i2cByID(id string) (*machine.I2C, bool) {
	switch id {
	case "i2c0":
		return machine.I2C0, true
	case "i2c1":
		return machine.I2C1, true
	default:
		return nil, false
	}
}

// NewResources configures the planned I2C controllers and returns the
// on-chip PWM HAL plus expanders on those buses.
func NewResources() core.Resources {
	buses := make(map[string]drivers.I2C)
	for _, p := range setups.SelectedPlan.I2C {
		i2c, ok := i2cByID(p.ID)
		if !ok {
			println("[hal] unknown i2c in plan:", p.ID)
			continue
		}
		err := i2c.Configure(machine.I2CConfig{
			SDA:       machine.Pin(p.SDA),
			SCL:       machine.Pin(p.SCL),
			Frequency: p.Hz,
		})
		if err != nil {
			println("[hal] i2c configure failed:", p.ID, err.Error())
			continue
		}
		buses[p.ID] = i2c
	}
	return core.Resources{
		PWM:      newRP2HAL(),
		Expander: newExpanders(buses).get,
		PM:       syspm.NewManager(rp2Enter),
	}
}

// rp2Enter is the platform hook run once every callback has agreed.
// TODO: enter DORMANT for deep sleep once a GPIO wake source is configured.
func rp2Enter(s syspm.State) error {
	if s == syspm.Hibernate {
		return errcode.Unsupported
	}
	println("[pm] enter:", s.String())
	return nil
}

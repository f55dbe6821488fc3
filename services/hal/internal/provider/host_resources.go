//go:build !rp2040

package provider

import (
	"rgbled-go/services/config/setups"
	"rgbled-go/services/hal/internal/core"
	"rgbled-go/syspm"

	"tinygo.org/x/drivers"
)

// HostResources is the simulated board behind core.Resources, kept so tests
// can inspect pins and registers.
type HostResources struct {
	PWM   *HostHAL
	Buses map[string]*HostI2C
	PM    *syspm.Manager
	Res   core.Resources
}

// NewHostResources builds a simulated board from plan. Every planned
// expander answers on its bus.
func NewHostResources(board HostBoard, plan setups.ResourcePlan) *HostResources {
	hr := &HostResources{
		PWM:   NewHost(board),
		Buses: make(map[string]*HostI2C),
		PM:    syspm.NewManager(hostEnter),
	}
	buses := make(map[string]drivers.I2C)
	for _, p := range plan.I2C {
		b := NewHostI2C()
		hr.Buses[p.ID] = b
		buses[p.ID] = b
	}
	for _, x := range plan.Expanders {
		if b, ok := hr.Buses[x.Bus]; ok {
			b.Attach(uint16(x.Addr))
		}
	}
	hr.Res = core.Resources{
		PWM:      hr.PWM,
		Expander: newExpanders(buses).get,
		PM:       hr.PM,
	}
	return hr
}

// NewResources returns the host board for the selected setup.
func NewResources() core.Resources {
	return NewHostResources(DefaultHostBoard, setups.SelectedPlan).Res
}

func hostEnter(s syspm.State) error {
	println("[pm] host enter:", s.String())
	return nil
}
